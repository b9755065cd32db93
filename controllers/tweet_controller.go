package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"minitweet/config"
	"minitweet/forms"
	"minitweet/middleware"
	"minitweet/models"
	"minitweet/utils"
)

// TweetController manages CRUD operations for tweets and replies.
type TweetController struct {
	db    *gorm.DB
	mount string
}

// NewTweetController creates a new TweetController instance. mount is the
// URL prefix tweet pages live under, used for post-mutation redirects.
func NewTweetController(db *gorm.DB, mount string) *TweetController {
	return &TweetController{db: db, mount: mount}
}

// ListTweets renders all top-level tweets, newest first, plus an empty
// create form.
func (t *TweetController) ListTweets(ctx *gin.Context) {
	sid := utils.SessionID(ctx)
	notices := utils.PopFlashes(sid)

	// Cached bytes would drop pending notices, so only short-circuit when
	// the flash queue is empty.
	if len(notices) == 0 {
		if b, ok := utils.CacheGetBytes("cache:tweets:list"); ok {
			ctx.Data(http.StatusOK, "application/json", b)
			return
		}
	}

	items, err := t.topLevelTweets()
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to list tweets")
		return
	}

	payload := gin.H{
		"items": items,
		"form":  forms.NewTweetForm().Schema(),
	}
	if len(notices) == 0 {
		utils.CacheSetJSON("cache:tweets:list", utils.JSONResponse{Code: 0, Message: "success", Data: payload}, time.Hour)
	}
	utils.SuccessWith(ctx, payload, notices)
}

// NewTweet renders the dedicated create form.
func (t *TweetController) NewTweet(ctx *gin.Context) {
	utils.Success(ctx, gin.H{"form": forms.NewTweetForm().Schema()})
}

// CreateTweet handles POST on the list page: on failure the list is
// re-rendered with field errors.
func (t *TweetController) CreateTweet(ctx *gin.Context) {
	t.createTweet(ctx, true)
}

// CreateTweetPage handles POST on the dedicated create page: same logic,
// isolated page, so failures re-render without the list.
func (t *TweetController) CreateTweetPage(ctx *gin.Context) {
	t.createTweet(ctx, false)
}

func (t *TweetController) createTweet(ctx *gin.Context, withList bool) {
	authorID, ok := t.resolveAuthor(ctx)
	if !ok {
		return
	}

	form := forms.NewTweetForm()
	form.Bind(ctx)
	if errs := form.Validate(); errs != nil {
		data := gin.H{"form": form.Schema()}
		if withList {
			if items, err := t.topLevelTweets(); err == nil {
				data["items"] = items
			}
		}
		utils.ValidationFailed(ctx, errs, data)
		return
	}

	tweet := models.Tweet{UserID: authorID, Text: form.Text}
	if form.Image != nil {
		if !t.attachImage(ctx, &tweet, form) {
			return
		}
	}

	if err := t.db.Create(&tweet).Error; err != nil {
		utils.RemoveImage(tweet.ImagePath)
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to create tweet")
		return
	}

	utils.InvalidateByPrefix("cache:tweets:list")
	utils.Flash(ctx, "Tweet posted successfully!")
	ctx.Redirect(http.StatusFound, t.mount)
}

// GetTweet renders one tweet with its direct replies, oldest first, and an
// empty reply form.
func (t *TweetController) GetTweet(ctx *gin.Context) {
	tweetID := ctx.Param("id")
	sid := utils.SessionID(ctx)
	notices := utils.PopFlashes(sid)

	if len(notices) == 0 {
		if b, ok := utils.CacheGetBytes("cache:tweet:detail:" + tweetID); ok {
			ctx.Data(http.StatusOK, "application/json", b)
			return
		}
	}

	var tweet models.Tweet
	if err := t.db.Preload("User").First(&tweet, tweetID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40401, "tweet not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to load tweet")
		return
	}

	var replies []models.Tweet
	if err := t.db.Preload("User").
		Where("parent_id = ?", tweet.ID).
		Order("created_at ASC").
		Find(&replies).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50024, "failed to load replies")
		return
	}

	payload := gin.H{
		"tweet":      tweet,
		"replies":    replies,
		"reply_form": forms.NewReplyForm().Schema(),
	}
	if len(notices) == 0 {
		utils.CacheSetJSON("cache:tweet:detail:"+tweetID, utils.JSONResponse{Code: 0, Message: "success", Data: payload}, time.Hour)
	}
	utils.SuccessWith(ctx, payload, notices)
}

// ReplyTweet creates a reply to the target tweet. Validation failures flash
// a notification and send the caller back to the detail page instead of
// rendering errors inline.
func (t *TweetController) ReplyTweet(ctx *gin.Context) {
	parentID := ctx.Param("id")
	var parent models.Tweet
	if err := t.db.First(&parent, parentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40402, "tweet not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50025, "failed to load tweet")
		return
	}

	authorID, ok := t.resolveAuthor(ctx)
	if !ok {
		return
	}

	detailURL := t.mount + "/" + parentID

	form := forms.NewReplyForm()
	form.Bind(ctx)
	if errs := form.Validate(); errs != nil {
		if msg, ok := errs["image"]; ok {
			utils.Flash(ctx, "Image error: "+msg+". Reply cannot be published.")
		} else {
			utils.Flash(ctx, "Please correct the errors below.")
		}
		ctx.Redirect(http.StatusFound, detailURL)
		return
	}

	reply := models.Tweet{UserID: authorID, Text: form.Text, ParentID: &parent.ID}
	if form.Image != nil {
		if !t.attachImage(ctx, &reply, form) {
			return
		}
	}

	if err := t.db.Create(&reply).Error; err != nil {
		utils.RemoveImage(reply.ImagePath)
		utils.Error(ctx, http.StatusInternalServerError, 50026, "failed to create reply")
		return
	}

	utils.InvalidateByPrefix("cache:tweet:detail:" + parentID)
	utils.Flash(ctx, "Reply posted successfully!")
	ctx.Redirect(http.StatusFound, detailURL)
}

// EditTweet renders the update form. Only the author can see it; anyone
// else gets the same 404 a missing id would, so existence is not leaked.
func (t *TweetController) EditTweet(ctx *gin.Context) {
	tweet, ok := t.ownedTweet(ctx)
	if !ok {
		return
	}
	utils.Success(ctx, gin.H{
		"tweet": tweet,
		"form":  forms.NewTweetForm().Schema(),
	})
}

// UpdateTweet mutates text and image of an owned tweet and refreshes its
// updated_at timestamp.
func (t *TweetController) UpdateTweet(ctx *gin.Context) {
	tweet, ok := t.ownedTweet(ctx)
	if !ok {
		return
	}

	form := forms.NewTweetForm()
	form.Bind(ctx)
	if errs := form.Validate(); errs != nil {
		utils.ValidationFailed(ctx, errs, gin.H{"tweet": tweet, "form": form.Schema()})
		return
	}

	oldImagePath := tweet.ImagePath
	tweet.Text = form.Text
	if form.Image != nil {
		if !t.attachImage(ctx, &tweet, form) {
			return
		}
	}

	if err := t.db.Save(&tweet).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50027, "failed to update tweet")
		return
	}
	if form.Image != nil && oldImagePath != "" && oldImagePath != tweet.ImagePath {
		utils.RemoveImage(oldImagePath)
	}

	for _, key := range staleCacheKeys(tweet) {
		utils.InvalidateByPrefix(key)
	}
	utils.Flash(ctx, "Tweet updated successfully!")
	ctx.Redirect(http.StatusFound, t.mount+"/"+strconv.Itoa(int(tweet.ID)))
}

// ConfirmDeleteTweet renders the delete confirmation for an owned tweet.
func (t *TweetController) ConfirmDeleteTweet(ctx *gin.Context) {
	tweet, ok := t.ownedTweet(ctx)
	if !ok {
		return
	}
	var replyCount int64
	t.db.Model(&models.Tweet{}).Where("parent_id = ?", tweet.ID).Count(&replyCount)
	utils.Success(ctx, gin.H{
		"tweet":       tweet,
		"reply_count": replyCount,
		"message":     "Deleting this tweet also deletes all replies to it.",
	})
}

// DeleteTweet removes an owned tweet. The storage engine cascades the
// delete through the reply subtree; stored image files of the subtree are
// removed here since the database cannot.
func (t *TweetController) DeleteTweet(ctx *gin.Context) {
	tweet, ok := t.ownedTweet(ctx)
	if !ok {
		return
	}

	imagePaths := t.collectSubtreeImages(tweet)

	if err := t.db.Delete(&tweet).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50028, "failed to delete tweet")
		return
	}
	for _, p := range imagePaths {
		utils.RemoveImage(p)
	}

	utils.InvalidateByPrefix("cache:tweets:list")
	utils.InvalidateByPrefix("cache:tweet:detail:")
	utils.Flash(ctx, "Tweet deleted successfully!")
	ctx.Redirect(http.StatusFound, t.mount)
}

// TweetStats returns page views and reply count for a tweet.
func (t *TweetController) TweetStats(ctx *gin.Context) {
	id := ctx.Param("id")

	var pv int64
	if err := t.db.Model(&models.PageView{}).
		Where("path = ?", t.mount+"/"+id).
		Select("COALESCE(SUM(count),0)").
		Scan(&pv).Error; err != nil {
		pv = 0
	}

	var replyCount int64
	if err := t.db.Model(&models.Tweet{}).Where("parent_id = ?", id).Count(&replyCount).Error; err != nil {
		replyCount = 0
	}

	utils.Success(ctx, gin.H{
		"pv":          pv,
		"reply_count": replyCount,
	})
}

// ownedTweet loads the tweet scoped to the current principal. Missing id and
// foreign ownership are deliberately indistinguishable.
func (t *TweetController) ownedTweet(ctx *gin.Context) (models.Tweet, bool) {
	var tweet models.Tweet

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return tweet, false
	}

	if err := t.db.
		Where("id = ? AND user_id = ?", ctx.Param("id"), userID).
		First(&tweet).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40403, "tweet not found")
		} else {
			utils.Error(ctx, http.StatusInternalServerError, 50029, "failed to load tweet")
		}
		return tweet, false
	}
	return tweet, true
}

// resolveAuthor returns the account the new tweet belongs to: the
// authenticated principal, or the configured anonymous account when
// anonymous posting is enabled.
func (t *TweetController) resolveAuthor(ctx *gin.Context) (uint, bool) {
	if userID, ok := getUserID(ctx); ok {
		return userID, true
	}

	cfg := config.Get()
	if !cfg.AllowAnonymous {
		utils.Error(ctx, http.StatusUnauthorized, 40111, "authentication required")
		return 0, false
	}

	var anon models.User
	if err := t.db.Where("username = ?", cfg.AnonymousUser).
		FirstOrCreate(&anon, models.User{Username: cfg.AnonymousUser}).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to resolve anonymous account")
		return 0, false
	}
	return anon.ID, true
}

// attachImage persists the uploaded file onto the tweet. Responds and
// returns false when the upload is rejected.
func (t *TweetController) attachImage(ctx *gin.Context, tweet *models.Tweet, form *forms.TweetForm) bool {
	file, err := form.Image.Open()
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40031, "failed to read uploaded image")
		return false
	}
	defer file.Close()

	url, path, err := utils.SaveTweetImage(file, form.Image)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40032, err.Error())
		return false
	}
	tweet.ImageURL = url
	tweet.ImagePath = path
	return true
}

// staleCacheKeys lists the cached pages a mutation of the tweet makes stale:
// the list, its own detail page, and the parent's detail page when the tweet
// is a reply embedded there.
func staleCacheKeys(t models.Tweet) []string {
	keys := []string{
		"cache:tweets:list",
		"cache:tweet:detail:" + strconv.Itoa(int(t.ID)),
	}
	if t.ParentID != nil {
		keys = append(keys, "cache:tweet:detail:"+strconv.Itoa(int(*t.ParentID)))
	}
	return keys
}

func (t *TweetController) topLevelTweets() ([]models.Tweet, error) {
	var items []models.Tweet
	err := t.db.Preload("User").
		Where("parent_id IS NULL").
		Order("created_at DESC").
		Find(&items).Error
	return items, err
}

// collectSubtreeImages walks the reply tree breadth-first and gathers stored
// image paths before the rows cascade away.
func (t *TweetController) collectSubtreeImages(root models.Tweet) []string {
	var paths []string
	if root.ImagePath != "" {
		paths = append(paths, root.ImagePath)
	}

	frontier := []uint{root.ID}
	for len(frontier) > 0 {
		var kids []models.Tweet
		if err := t.db.Where("parent_id IN ?", frontier).Find(&kids).Error; err != nil || len(kids) == 0 {
			break
		}
		frontier = frontier[:0]
		for _, k := range kids {
			if k.ImagePath != "" {
				paths = append(paths, k.ImagePath)
			}
			frontier = append(frontier, k.ID)
		}
	}
	return paths
}

func getUserID(ctx *gin.Context) (uint, bool) {
	value, exists := ctx.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		return uint(v), true
	case int64:
		return uint(v), true
	case float64:
		return uint(v), true
	default:
		return 0, false
	}
}
