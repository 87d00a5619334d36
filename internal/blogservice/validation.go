package blogservice

import (
	"regexp"

	"github.com/sushihentaime/quill/internal/common"
)

var (
	SlugRX = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

func validateTitle(v *common.Validator, title string) {
	v.Check(common.NotBlank(title), "title", common.MsgRequired)
	v.Check(v.CheckStringLength(title, 0, 200), "title", "must not be more than 200 characters long")
}

func validateSlug(v *common.Validator, slug string) {
	v.Check(slug != "", "slug", common.MsgRequired)
	v.Check(v.CheckStringLength(slug, 0, 255), "slug", "must not be more than 255 characters long")
	v.Check(common.Matches(slug, SlugRX), "slug", "must only contain lowercase letters, numbers and single hyphens")
}

func validateContent(v *common.Validator, content string) {
	v.Check(common.NotBlank(content), "content", common.MsgRequired)
}

func validateStatus(v *common.Validator, status string) {
	v.Check(common.PermittedValue(status, StatusDraft, StatusPublished, StatusArchived), "status", "must be one of draft, published or archived")
}

func ValidateCreatePost(v *common.Validator, req CreatePostRequest) {
	validateTitle(v, req.Title)
	validateSlug(v, req.Slug)
	validateContent(v, req.Content)
	validateStatus(v, req.Status)
}
