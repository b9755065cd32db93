package forms

import (
	"mime/multipart"
	"strings"

	"github.com/gin-gonic/gin"

	"minitweet/utils"
	"minitweet/validation"
)

// TweetForm binds and validates tweet input from a multipart or urlencoded
// POST body. Creating a tweet and replying share the exact same rules; the
// two constructors differ only in the UI metadata rendered by the GET form
// endpoints.
type TweetForm struct {
	Text  string
	Image *multipart.FileHeader

	placeholder string
	rows        int
}

// NewTweetForm returns the form used for top-level tweets.
func NewTweetForm() *TweetForm {
	return &TweetForm{
		placeholder: "What's happening? (max 280 characters)",
		rows:        3,
	}
}

// NewReplyForm returns the form used for replies.
func NewReplyForm() *TweetForm {
	return &TweetForm{
		placeholder: "Reply to this tweet...",
		rows:        2,
	}
}

// Bind populates the form from the request. A missing image field is not an
// error; the attachment is optional. Sanitizing runs before the trim so
// length validation sees exactly the text that gets stored.
func (f *TweetForm) Bind(ctx *gin.Context) {
	f.Text = strings.TrimSpace(utils.Sanitize(ctx.PostForm("text")))
	if fh, err := ctx.FormFile("image"); err == nil {
		f.Image = fh
	}
}

// Validate applies the shared rules and returns field-keyed messages, or nil
// when the input is acceptable.
func (f *TweetForm) Validate() validation.FieldErrors {
	errs := validation.FieldErrors{}

	if err := validation.CheckText(f.Text); err != nil {
		errs["text"] = err.Error()
	}

	if f.Image != nil {
		if err := validation.CheckImage(f.Image.Size, f.Image.Header.Get("Content-Type")); err != nil {
			errs["image"] = err.Error()
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Schema describes the form for clients rendering it.
func (f *TweetForm) Schema() gin.H {
	return gin.H{
		"fields": []gin.H{
			{
				"name":        "text",
				"type":        "textarea",
				"required":    true,
				"maxlength":   validation.MaxTextLen,
				"rows":        f.rows,
				"placeholder": f.placeholder,
			},
			{
				"name":      "image",
				"type":      "file",
				"required":  false,
				"accept":    "image/*",
				"max_bytes": validation.MaxImageBytes,
			},
		},
	}
}
