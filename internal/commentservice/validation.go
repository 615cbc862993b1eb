package commentservice

import "github.com/tofuwabohu/clubist/internal/common"

const maxContentLength = 2000

func validateContent(v *common.Validator, content string) {
	v.Check(v.CheckNotBlank(content), "content", "must be provided")
	v.Check(v.CheckStringLength(content, 0, maxContentLength), "content", "must not be more than 2000 characters long")
}

func validateId(v *common.Validator, id, name string) {
	v.Check(id != "", name, "must be provided")
}
