package store

import "github.com/CrowderSoup/minijira/api"

type ProjectsState struct {
	Projects []api.Project `json:"projects"`
	Total    int           `json:"total"`
	Page     int           `json:"page"`
	Pages    int           `json:"pages"`
	Flags
}

type ProjectsFetchStarted struct{}

func (ProjectsFetchStarted) apply(s *State) {
	s.Projects.IsLoading = true
	s.Projects.IsError = false
	s.Projects.Message = ""
}

type ProjectsFetched struct{ Page api.ProjectPage }

func (a ProjectsFetched) apply(s *State) {
	p := &s.Projects
	p.succeed()
	p.Projects = append([]api.Project{}, a.Page.Projects...)
	p.Total = a.Page.Total
	p.Page = a.Page.Page
	p.Pages = a.Page.Pages
}

type ProjectsFetchFailed struct{ Message string }

func (a ProjectsFetchFailed) apply(s *State) {
	s.Projects.IsLoading = false
	s.Projects.IsError = true
	s.Projects.Message = a.Message
}

type ProjectCreateStarted struct{}

func (ProjectCreateStarted) apply(s *State) { s.Projects.start() }

type ProjectCreated struct{ Project api.Project }

func (ProjectCreated) apply(s *State) { s.Projects.succeed() }

type ProjectCreateFailed struct{ Message string }

func (a ProjectCreateFailed) apply(s *State) { s.Projects.fail(a.Message) }

type ProjectUpdateStarted struct{}

func (ProjectUpdateStarted) apply(s *State) { s.Projects.start() }

type ProjectUpdated struct{ Project api.Project }

func (a ProjectUpdated) apply(s *State) {
	p := &s.Projects
	p.succeed()
	for i := range p.Projects {
		if p.Projects[i].ID == a.Project.ID {
			p.Projects[i] = a.Project
			return
		}
	}
}

type ProjectUpdateFailed struct{ Message string }

func (a ProjectUpdateFailed) apply(s *State) { s.Projects.fail(a.Message) }

type ProjectDeleteStarted struct{}

func (ProjectDeleteStarted) apply(s *State) {
	s.Projects.IsLoading = true
	s.Projects.IsError = false
	s.Projects.Message = ""
}

type ProjectDeleted struct{ ID string }

func (a ProjectDeleted) apply(s *State) {
	p := &s.Projects
	p.succeed()
	kept := make([]api.Project, 0, len(p.Projects))
	for _, project := range p.Projects {
		if project.ID != a.ID {
			kept = append(kept, project)
		}
	}
	p.Projects = kept
}

type ProjectDeleteFailed struct{ Message string }

func (a ProjectDeleteFailed) apply(s *State) {
	s.Projects.IsLoading = false
	s.Projects.IsError = true
	s.Projects.Message = a.Message
}
