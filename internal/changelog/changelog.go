package changelog

import (
	_ "embed"
	"html/template"

	"github.com/pkg/errors"
	"github.com/russross/blackfriday"
)

var errEmptyChangelog = errors.New("changelog: CHANGELOG.md is empty")

//go:embed CHANGELOG.md
var changelog []byte

func LoadChangelog() (template.HTML, error) {
	if len(changelog) == 0 {
		return "", errEmptyChangelog
	}

	return template.HTML(blackfriday.Run(changelog)), nil
}
