package profile

// Op is one field operation of an update. Ops run in order against the
// decoded document inside a single store transaction; the first error aborts
// the whole update.
type Op func(p *Profile) error

// SetEducation replaces the education text.
func SetEducation(education string) Op {
	return func(p *Profile) error {
		p.Education = education
		return nil
	}
}

// SetSkills replaces the profile-level skill list.
func SetSkills(skills []string) Op {
	return func(p *Profile) error {
		p.Skills = append([]string{}, skills...)
		return nil
	}
}

// SetLinks replaces the whole links map. Keys missing from links are dropped.
func SetLinks(links Links) Op {
	return func(p *Profile) error {
		p.Links = make(Links, len(links))
		for k, v := range links {
			p.Links[k] = v
		}
		return nil
	}
}

// PushWork appends a work entry.
func PushWork(w WorkEntry) Op {
	return func(p *Profile) error {
		p.Work = append(p.Work, w)
		return nil
	}
}

// PushProject appends a project.
func PushProject(pr ProjectEntry) Op {
	return func(p *Profile) error {
		p.Projects = append(p.Projects, pr)
		return nil
	}
}

// SetProject overwrites the title, description, skills and links of the
// project whose id matches pr.ID. No match fails the update with ErrNotFound.
func SetProject(pr ProjectEntry) Op {
	return func(p *Profile) error {
		for i := range p.Projects {
			if p.Projects[i].ID != pr.ID {
				continue
			}
			p.Projects[i].Title = pr.Title
			p.Projects[i].Description = pr.Description
			p.Projects[i].Skills = pr.Skills
			p.Projects[i].Links = pr.Links
			return nil
		}
		return projectNotFound(pr.ID)
	}
}

// PullProject removes every project with the given id. Removing an id that
// is not present is not an error.
func PullProject(id string) Op {
	return func(p *Profile) error {
		kept := p.Projects[:0]
		for _, pr := range p.Projects {
			if pr.ID != id {
				kept = append(kept, pr)
			}
		}
		p.Projects = kept
		return nil
	}
}
