package statservice

import "github.com/tofuwabohu/clubist/internal/common"

func validateBlogId(v *common.Validator, blogId string) {
	v.Check(blogId != "", "blog_id", "must be provided")
}

func validateCounter(v *common.Validator, field Counter) {
	switch field {
	case CounterViews, CounterLikes, CounterComments:
	default:
		v.AddError("field", "must be one of views, likes, comments")
	}
}
