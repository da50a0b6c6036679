package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kalambet/folio/internal/config"
	"github.com/kalambet/folio/internal/profile"
	"github.com/kalambet/folio/internal/storage"
)

var seedCmd = &cobra.Command{
	Use:   "seed <file.json|->",
	Short: "Create or overwrite the profile from a JSON document",
	Long: `Create or overwrite the profile from a JSON document, writing straight to
storage. The document uses the same shape as "folio profile show" and
"folio data export" produce; a missing email defaults to auth.email.

Example:
  folio seed ./me.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readInput(cmd.InOrStdin(), args[0])
		if err != nil {
			return err
		}

		var p profile.Profile
		if err := json.Unmarshal(data, &p); err != nil {
			return fmt.Errorf("parsing profile JSON: %w", err)
		}

		cfg, err := config.Resolve()
		if err != nil {
			return err
		}
		if p.Email == "" {
			p.Email = cfg.Auth.Email
		}
		if cfg.Auth.Email != "" && profile.Key(p.Email) != profile.Key(cfg.Auth.Email) {
			printWarning("profile email %s differs from auth.email %s; the server will not serve it", p.Email, cfg.Auth.Email)
		}

		store, err := storage.Open(cfg.Storage.DataDir)
		if err != nil {
			return fmt.Errorf("opening storage: %w", err)
		}
		defer store.Close()

		seeded, err := profile.Seed(cmd.Context(), store.Collection(profile.CollectionName), p)
		if err != nil {
			return err
		}

		printSuccess("Seeded profile for %s (%d work, %d projects)", seeded.Email, len(seeded.Work), len(seeded.Projects))
		return nil
	},
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

// --- data ---

var dataCmd = &cobra.Command{
	Use:   "data",
	Short: "Export or purge the stored profile",
}

var dataExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the profile as JSON (re-importable with folio seed)",
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), apiBase+"/profile")
		if err != nil {
			return err
		}
		var p profile.Profile
		if err := decodeJSON(resp, &p); err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if output != "" {
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("creating output file: %w", err)
			}
			defer f.Close()
			w = f
		}

		if err := printJSON(w, p); err != nil {
			return err
		}
		if output != "" {
			printSuccess("Profile exported to %s", output)
		}
		return nil
	},
}

var dataPurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete the stored profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		confirm, _ := cmd.Flags().GetBool("confirm")
		if !confirm {
			printWarning("This will delete the stored profile. Use --confirm to proceed.")
			return nil
		}

		cfg, err := config.Resolve()
		if err != nil {
			return err
		}
		if cfg.Auth.Email == "" {
			return fmt.Errorf("auth.email is not set")
		}

		store, err := storage.Open(cfg.Storage.DataDir)
		if err != nil {
			return fmt.Errorf("opening storage: %w", err)
		}
		defer store.Close()

		profiles := store.Collection(profile.CollectionName)
		printStep("Deleting profile %s...", profile.Key(cfg.Auth.Email))
		err = profiles.DeleteOne(cmd.Context(), profile.Key(cfg.Auth.Email))
		if errors.Is(err, storage.ErrNotFound) {
			printWarning("No profile stored for %s", cfg.Auth.Email)
			return nil
		}
		if err != nil {
			return err
		}

		keys, err := profiles.Keys(cmd.Context())
		if err != nil {
			return err
		}
		printSuccess("Profile purged (%d other profile document(s) remain)", len(keys))
		return nil
	},
}

func init() {
	dataExportCmd.Flags().String("output", "", "output file path (default: stdout)")
	dataPurgeCmd.Flags().Bool("confirm", false, "confirm profile purge")
	dataCmd.AddCommand(dataExportCmd)
	dataCmd.AddCommand(dataPurgeCmd)
}
