package scanner

import (
	"os"
	"path/filepath"
	"strings"
)

var sourceDirNames = map[string]bool{
	"src": true, "lib": true, "pkg": true, "internal": true, "app": true,
	"cmd": true, "core": true, "components": true, "pages": true,
	"api": true, "routers": true, "templates": true,
}

var testDirNames = map[string]bool{
	"test": true, "tests": true, "spec": true, "specs": true,
	"__tests__": true, "testdata": true, "e2e": true, "integration": true,
}

var configPatterns = []string{
	".rulesgen.yaml",
	".rulesgen.yml",
	".env.example",
	"pyproject.toml",
	"setup.py",
	"setup.cfg",
	"requirements*.txt",
	"package.json",
	"tsconfig.json",
	"go.mod",
	"*.config.js",
	"*.config.ts",
	"docker-compose.y*ml",
	"Dockerfile",
	"Makefile",
}

var entryPointCandidates = []string{
	"main.py",
	"app.py",
	"__main__.py",
	"cli.py",
	"manage.py",
	"main.go",
	"index.js",
	"index.ts",
	"src/index.ts",
	"src/index.js",
	"src/main.ts",
	"src/main.js",
}

var ciMarkers = []struct {
	path   string
	system string
	dir    bool
}{
	{".github/workflows", "github-actions", true},
	{".gitlab-ci.yml", "gitlab-ci", false},
	{".circleci/config.yml", "circleci", false},
	{".travis.yml", "travis-ci", false},
	{"Jenkinsfile", "jenkins", false},
}

// topLevelFiles returns the names of regular files directly under rootDir,
// sorted by name.
func topLevelFiles(rootDir string) []string {
	entries, err := os.ReadDir(rootDir)
	if err != nil {
		return nil
	}
	var files []string
	for _, entry := range entries {
		if !entry.IsDir() {
			files = append(files, entry.Name())
		}
	}
	return files
}

// detectStructure analyzes the project directory layout.
func detectStructure(rootDir string, files []string) ProjectStructure {
	var structure ProjectStructure

	if entries, err := os.ReadDir(rootDir); err == nil {
		for _, entry := range entries {
			name := entry.Name()
			if !entry.IsDir() || strings.HasPrefix(name, ".") {
				continue
			}
			if sourceDirNames[name] {
				structure.SourceDirs = append(structure.SourceDirs, name)
			}
			if testDirNames[name] {
				structure.TestDirs = append(structure.TestDirs, name)
			}
		}
	}

	for _, name := range files {
		for _, pattern := range configPatterns {
			if matched, _ := filepath.Match(pattern, name); matched {
				structure.ConfigFiles = append(structure.ConfigFiles, name)
				break
			}
		}
	}

	for _, rel := range entryPointCandidates {
		if fileExists(filepath.Join(rootDir, filepath.FromSlash(rel))) {
			structure.EntryPoints = append(structure.EntryPoints, rel)
		}
	}
	if entries, err := os.ReadDir(filepath.Join(rootDir, "cmd")); err == nil {
		for _, entry := range entries {
			if entry.IsDir() && fileExists(filepath.Join(rootDir, "cmd", entry.Name(), "main.go")) {
				structure.EntryPoints = append(structure.EntryPoints, "cmd/"+entry.Name()+"/main.go")
			}
		}
	}

	structure.HasDocker = fileExists(filepath.Join(rootDir, "Dockerfile")) ||
		fileExists(filepath.Join(rootDir, "docker-compose.yml")) ||
		fileExists(filepath.Join(rootDir, "docker-compose.yaml"))

	for _, m := range ciMarkers {
		path := filepath.Join(rootDir, filepath.FromSlash(m.path))
		if (m.dir && dirExists(path)) || (!m.dir && fileExists(path)) {
			structure.HasCI, structure.CISystem = true, m.system
			break
		}
	}

	return structure
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
