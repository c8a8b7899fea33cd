package formatter

type GeneralIssueFormatter struct{}

func (f *GeneralIssueFormatter) IssueTemplate() string {
	return `{{header .Rule .Severity .MaxLineNumWidth .Filename .StartLine .StartColumn}}
{{- snippet .SnippetLines .StartLine .EndLine .MaxLineNumWidth .CommonIndent .Padding}}
{{- message .Message .Padding}}
{{- if .Suggestion}}{{rewrite .Original .Suggestion .Padding}}{{end}}
{{- if .Note}}{{note .Note}}{{end}}
`
}

// RemovalIssueFormatter shows rewrites that delete statements outright.
type RemovalIssueFormatter struct{}

func (f *RemovalIssueFormatter) IssueTemplate() string {
	return `{{header .Rule .Severity .MaxLineNumWidth .Filename .StartLine .StartColumn}}
{{- snippet .SnippetLines .StartLine .EndLine .MaxLineNumWidth .CommonIndent .Padding}}
{{- message .Message .Padding}}
{{- removal .Original .Padding}}
{{- if .Note}}{{note .Note}}{{end}}
`
}
