// Package scanner gathers the project metadata the classifier and needs
// analyzer work from: README fields, top-level layout, and manifest
// dependencies.
package scanner

// ProjectStructure contains information about the project's directory layout.
type ProjectStructure struct {
	SourceDirs  []string `json:"source_dirs,omitempty" yaml:"source_dirs,omitempty"`
	TestDirs    []string `json:"test_dirs,omitempty" yaml:"test_dirs,omitempty"`
	ConfigFiles []string `json:"config_files,omitempty" yaml:"config_files,omitempty"`
	EntryPoints []string `json:"entry_points,omitempty" yaml:"entry_points,omitempty"`
	HasDocker   bool     `json:"has_docker" yaml:"has_docker"`
	HasCI       bool     `json:"has_ci" yaml:"has_ci"`
	CISystem    string   `json:"ci_system,omitempty" yaml:"ci_system,omitempty"`
}

// ProjectInfo contains all detected information about a project.
type ProjectInfo struct {
	Name         string           `json:"name" yaml:"name"`
	RawName      string           `json:"raw_name,omitempty" yaml:"raw_name,omitempty"`
	Description  string           `json:"description" yaml:"description"`
	TechStack    []string         `json:"tech_stack" yaml:"tech_stack"`
	Features     []string         `json:"features,omitempty" yaml:"features,omitempty"`
	Readme       string           `json:"-" yaml:"-"`
	ReadmePath   string           `json:"readme_path,omitempty" yaml:"readme_path,omitempty"`
	RootDir      string           `json:"root_dir" yaml:"root_dir"`
	Files        []string         `json:"files,omitempty" yaml:"files,omitempty"`
	ManifestTech []string         `json:"manifest_tech,omitempty" yaml:"manifest_tech,omitempty"`
	Structure    ProjectStructure `json:"structure" yaml:"structure"`
}

// Readme holds the fields scraped from a README document.
type Readme struct {
	Name        string
	RawName     string
	Description string
	TechStack   []string
	Features    []string
	Content     string
	Path        string
}
