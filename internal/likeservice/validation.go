package likeservice

import "github.com/tofuwabohu/clubist/internal/common"

func validatePair(v *common.Validator, blogId, userId string) {
	v.Check(blogId != "", "blog_id", "must be provided")
	v.Check(userId != "", "user_id", "must be provided")
}
