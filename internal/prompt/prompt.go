// Package prompt renders the instruction prompts sent to the model.
package prompt

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

//go:embed templates.yaml
var templatesYAML []byte

type templateSet struct {
	CoverLetter string `yaml:"cover_letter"`
	Resize      string `yaml:"resize"`
}

var (
	coverLetterTmpl *template.Template
	resizeTmpl      *template.Template
)

func init() {
	var set templateSet
	if err := yaml.Unmarshal(templatesYAML, &set); err != nil {
		panic(fmt.Sprintf("prompt: parse templates: %v", err))
	}
	coverLetterTmpl = mustParse("cover_letter", set.CoverLetter)
	resizeTmpl = mustParse("resize", set.Resize)
}

func mustParse(name, text string) *template.Template {
	if strings.TrimSpace(text) == "" {
		panic("prompt: empty template " + name)
	}
	return template.Must(template.New(name).Option("missingkey=error").Parse(text))
}

type coverLetterData struct {
	ResumeText     string
	JobDescription string
}

type resizeData struct {
	ResumeText  string
	TargetPages PageCount
}

// CoverLetter asks for a cover letter tailored to jobDescription.
// Both inputs are embedded verbatim.
func CoverLetter(resumeText, jobDescription string) string {
	return render(coverLetterTmpl, coverLetterData{ResumeText: resumeText, JobDescription: jobDescription})
}

// Resize asks for guidance on fitting the resume into pages.
func Resize(resumeText string, pages PageCount) string {
	return render(resizeTmpl, resizeData{ResumeText: resumeText, TargetPages: pages})
}

func render(t *template.Template, data any) string {
	var sb strings.Builder
	if err := t.Execute(&sb, data); err != nil {
		panic(fmt.Sprintf("prompt: render %s: %v", t.Name(), err))
	}
	return sb.String()
}
