package blogservice

import (
	"regexp"

	"github.com/tofuwabohu/clubist/internal/common"
)

var (
	TitleRX = regexp.MustCompile("^[a-zA-Z0-9 ]+$")
)

func validateTitle(v *common.Validator, title string) {
	v.Check(title != "", "title", "must be provided")
	v.Check(v.CheckStringLength(title, 3, 100), "title", "must be between 3 and 100 characters long")
	v.Check(TitleRX.MatchString(title), "title", "must only contain letters, numbers, and spaces")
}

func validateContent(v *common.Validator, content string) {
	v.Check(v.CheckNotBlank(content), "content", "must be provided")
}

func validateAuthor(v *common.Validator, author Author) {
	v.Check(author.ID != "", "author.id", "must be provided")
	v.Check(author.Username != "", "author.username", "must be provided")
}

func validateId(v *common.Validator, id, name string) {
	v.Check(id != "", name, "must be provided")
}
