package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"school-site-console/app/server/constants"
	"school-site-console/app/server/models"
	"school-site-console/app/server/storage"
)

type HistoryInfo struct {
	ID           uint    `json:"id"`
	Date         string  `json:"date"`
	Title        string  `json:"title"`
	Content      string  `json:"content"`
	ImageURL     *string `json:"image_url"`
	ThumbnailURL *string `json:"thumbnail_url"`
}

func historyInfo(h *models.History) *HistoryInfo {
	return &HistoryInfo{
		ID:           h.ID,
		Date:         h.Date,
		Title:        h.Title,
		Content:      h.Content,
		ImageURL:     h.ImageURL,
		ThumbnailURL: thumbnailURL(h.ImageURL),
	}
}

func (a *App) HistoryList(c echo.Context) error {
	if _, err, statusCode := a.authUser(c, false); err != nil {
		a.l.Error("failed to auth", zap.Error(err))
		return a.er(c, statusCode)
	}

	rctx := c.Request().Context()

	var histories []models.History
	if err := a.db.WithContext(rctx).Order("date ASC").Find(&histories).Error; err != nil {
		a.l.Error("failed to get history list", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	res := []HistoryInfo{}
	for i := range histories {
		res = append(res, *historyInfo(&histories[i]))
	}

	c.Response().Header().Set("Cache-Control", "public, max-age=60, s-maxage=300, stale-while-revalidate=600")
	return c.JSON(http.StatusOK, res)
}

func (a *App) HistoryCreate(c echo.Context) error {
	if _, err, statusCode := a.authUser(c, true); err != nil {
		a.l.Error("failed to auth", zap.Error(err))
		return a.er(c, statusCode)
	}

	rctx := c.Request().Context()

	date := c.FormValue("date")
	title := c.FormValue("title")
	content := c.FormValue("content")
	if date == "" || title == "" || content == "" {
		return a.erMsg(c, http.StatusBadRequest, "date, title and content are required")
	}

	history := models.History{
		Date:    date,
		Title:   title,
		Content: normalizeNewlines(content),
	}

	// Optional image
	file, err := readFormFile(c, "image")
	if err != nil {
		a.l.Error("failed to read image", zap.Error(err))
		return a.er(c, http.StatusBadRequest)
	}
	if file != nil {
		key := storage.NewObjectKey(constants.KeyFolderHistories, file.Filename)
		if err := a.store.Upload(rctx, key, file.Data, file.ContentType, false); err != nil {
			a.l.Error("failed to upload image", zap.String("key", key), zap.Error(err))
			return a.er(c, http.StatusInternalServerError)
		}
		url := a.store.PublicURL(key)
		history.ImageURL = &url
	}

	if err := a.db.WithContext(rctx).Create(&history).Error; err != nil {
		a.l.Error("failed to create history", zap.Any("history", history), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	return c.JSON(http.StatusCreated, historyInfo(&history))
}

func (a *App) HistoryUpdate(c echo.Context) error {
	if _, err, statusCode := a.authUser(c, true); err != nil {
		a.l.Error("failed to auth", zap.Error(err))
		return a.er(c, statusCode)
	}

	rctx := c.Request().Context()

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return a.erMsg(c, http.StatusBadRequest, "invalid id")
	}

	var history models.History
	if err := a.db.WithContext(rctx).First(&history, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return a.er(c, http.StatusNotFound)
		}
		a.l.Error("failed to find history", zap.Uint64("id", id), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	date := c.FormValue("date")
	title := c.FormValue("title")
	content := c.FormValue("content")
	if date == "" || title == "" || content == "" {
		return a.erMsg(c, http.StatusBadRequest, "date, title and content are required")
	}

	history.Date = date
	history.Title = title
	history.Content = normalizeNewlines(content)

	// Optional replacement image. The superseded object is reclaimed through
	// the cleanup queue once the row write is done.
	var oldKey string
	file, err := readFormFile(c, "image")
	if err != nil {
		a.l.Error("failed to read image", zap.Error(err))
		return a.er(c, http.StatusBadRequest)
	}
	if file != nil {
		key := storage.NewObjectKey(constants.KeyFolderHistories, file.Filename)
		if err := a.store.Upload(rctx, key, file.Data, file.ContentType, false); err != nil {
			a.l.Error("failed to upload image", zap.String("key", key), zap.Error(err))
			return a.er(c, http.StatusInternalServerError)
		}
		if history.ImageURL != nil {
			oldKey = a.store.ExtractKey(*history.ImageURL)
		}
		url := a.store.PublicURL(key)
		history.ImageURL = &url
	}

	if err := a.db.WithContext(rctx).Save(&history).Error; err != nil {
		a.l.Error("failed to update history", zap.Uint64("id", id), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	a.scheduleCleanup(rctx, oldKey)

	return c.JSON(http.StatusOK, historyInfo(&history))
}

func (a *App) HistoryDelete(c echo.Context) error {
	if _, err, statusCode := a.authUser(c, true); err != nil {
		a.l.Error("failed to auth", zap.Error(err))
		return a.er(c, statusCode)
	}

	rctx := c.Request().Context()

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return a.erMsg(c, http.StatusBadRequest, "invalid id")
	}

	var history models.History
	if err := a.db.WithContext(rctx).First(&history, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return a.er(c, http.StatusNotFound)
		}
		a.l.Error("failed to find history", zap.Uint64("id", id), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	if err := a.db.WithContext(rctx).Delete(&history).Error; err != nil {
		a.l.Error("failed to delete history", zap.Uint64("id", id), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	if history.ImageURL != nil {
		a.scheduleCleanup(rctx, a.store.ExtractKey(*history.ImageURL))
	}

	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}
