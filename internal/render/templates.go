package render

const markdownTemplate = `---
project: {{.ProjectName}}
purpose: Agent skills for this project
type: agent-skills
detected_type: {{.ProjectType}}
confidence: {{printf "%.2f" .Confidence}}
version: {{.Version}}
{{- if .GeneratedBy}}
generated_by: {{.GeneratedBy}}
{{- end}}
---
` + GeneratedStartMarker + `

## PROJECT CONTEXT
- **Type**: {{title .ProjectType}}
- **Tech Stack**: {{if .TechStack}}{{join .TechStack ", "}}{{else}}general{{end}}
{{- if .Domain}}
- **Domain**: {{.Domain}}
{{- end}}
{{- with .Layout}}
{{- if .EntryPoints}}
- **Entry Points**: {{join .EntryPoints ", "}}
{{- end}}
{{- if .SourceDirs}}
- **Source Dirs**: {{join .SourceDirs ", "}}
{{- end}}
{{- if .TestDirs}}
- **Test Dirs**: {{join .TestDirs ", "}}
{{- end}}
{{- if .CISystem}}
- **CI**: {{.CISystem}}
{{- end}}
{{- if .HasDocker}}
- **Docker**: yes
{{- end}}
{{- end}}
{{- range .Sections}}

## {{.Heading}}
{{- range .Skills}}

### {{.Name}}
{{.Description}}
{{- if showSource .Source}}

> *Source: {{.Source}}*
{{- end}}
{{- if .Tools}}

**Tools:** {{join .Tools ", "}}
{{- end}}
{{- if .Triggers}}

**Triggers:**
{{- range .Triggers}}
- {{.}}
{{- end}}
{{- end}}
{{- if .WhenToUse}}

**When to use:**
{{- range .WhenToUse}}
- {{.}}
{{- end}}
{{- end}}
{{- if .AvoidIf}}

**Avoid if:**
{{- range .AvoidIf}}
- {{.}}
{{- end}}
{{- end}}
{{- if .Checks}}

**Checks:**
{{- range .Checks}}
- {{.}}
{{- end}}
{{- end}}
{{- if .InputDesc}}

**Input:** {{.InputDesc}}
{{- end}}
{{- if .OutputDesc}}

**Output:** {{.OutputDesc}}
{{- end}}
{{- if .UsageExample}}

**Usage:**
{{usage .UsageExample}}
{{- end}}
{{- end}}
{{- end}}

## USAGE

### In IDE Agent (Claude/Gemini/Cursor)
Load skills from ` + "`{{.ProjectName}}-skills.md`" + `

### Manual Reference
Read this file before working on the project.
` + GeneratedEndMarker + `
`

const defaultCustomSection = `
## Custom Skills

Add project-specific skills below. These will be preserved when regenerating.
`

const rulesTemplate = `---
project: {{.ProjectName}}
purpose: Coding & contribution rules for this workspace
type: agent-rules
version: {{.Version}}
{{- if .GeneratedBy}}
generated_by: {{.GeneratedBy}}
{{- end}}
---
` + GeneratedStartMarker + `

## CONTEXT

{{.Context}}

This project uses **{{.Stack}}** as its primary technology stack.

## DO (must follow)
{{range .Do}}
- {{.}}
{{- end}}

## DON'T
{{range .Dont}}
- {{.}}
{{- end}}

## PRIORITIES
{{range $i, $p := .Priorities}}
{{inc $i}}. {{$p}}
{{- end}}

## WORKFLOWS
{{range .Workflows}}
- {{.}}
{{- end}}
` + GeneratedEndMarker + `
`

const defaultCustomRules = `
## Custom Rules

Add project-specific rules below. These will be preserved when regenerating.
`
