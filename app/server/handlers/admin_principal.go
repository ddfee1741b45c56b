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

type PrincipalInfo struct {
	ID           uint    `json:"id"`
	Year         int     `json:"year"`
	Name         string  `json:"name"`
	ImageURL     *string `json:"image_url"`
	ThumbnailURL *string `json:"thumbnail_url"`
}

func principalInfo(p *models.Principal) *PrincipalInfo {
	return &PrincipalInfo{
		ID:           p.ID,
		Year:         p.Year,
		Name:         p.Name,
		ImageURL:     p.ImageURL,
		ThumbnailURL: thumbnailURL(p.ImageURL),
	}
}

// yearTaken reports whether another record already claims the year. This is a
// read-then-write check, the unique index on year is what actually holds the
// line under concurrent submissions.
func (a *App) yearTaken(c echo.Context, year int, excludeID uint) (bool, error) {
	var principal models.Principal

	query := a.db.WithContext(c.Request().Context()).Where("year = ?", year)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}

	if err := query.First(&principal).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

func (a *App) PrincipalList(c echo.Context) error {
	if _, err, statusCode := a.authUser(c, false); err != nil {
		a.l.Error("failed to auth", zap.Error(err))
		return a.er(c, statusCode)
	}

	rctx := c.Request().Context()

	var principals []models.Principal
	if err := a.db.WithContext(rctx).Order("year DESC").Find(&principals).Error; err != nil {
		a.l.Error("failed to get principal list", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	res := []PrincipalInfo{}
	for i := range principals {
		res = append(res, *principalInfo(&principals[i]))
	}

	c.Response().Header().Set("Cache-Control", "public, max-age=60, s-maxage=300, stale-while-revalidate=600")
	return c.JSON(http.StatusOK, echo.Map{"data": res})
}

func (a *App) PrincipalCreate(c echo.Context) error {
	if _, err, statusCode := a.authUser(c, true); err != nil {
		a.l.Error("failed to auth", zap.Error(err))
		return a.er(c, statusCode)
	}

	rctx := c.Request().Context()

	yearStr := c.FormValue("year")
	name := c.FormValue("name")
	if yearStr == "" || name == "" {
		return a.erMsg(c, http.StatusBadRequest, "year and name are required")
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return a.erMsg(c, http.StatusBadRequest, "year must be a number")
	}

	if taken, err := a.yearTaken(c, year, 0); err != nil {
		a.l.Error("failed to check year", zap.Int("year", year), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	} else if taken {
		return a.erMsg(c, http.StatusConflict, "a principal is already registered for this year")
	}

	principal := models.Principal{
		Year: year,
		Name: name,
	}

	file, err := readFormFile(c, "image")
	if err != nil {
		a.l.Error("failed to read image", zap.Error(err))
		return a.er(c, http.StatusBadRequest)
	}
	if file != nil {
		key := storage.NewObjectKey(constants.KeyFolderPrincipals, file.Filename)
		if err := a.store.Upload(rctx, key, file.Data, file.ContentType, false); err != nil {
			a.l.Error("failed to upload image", zap.String("key", key), zap.Error(err))
			return a.er(c, http.StatusInternalServerError)
		}
		url := a.store.PublicURL(key)
		principal.ImageURL = &url
	}

	if err := a.db.WithContext(rctx).Create(&principal).Error; err != nil {
		a.l.Error("failed to create principal", zap.Any("principal", principal), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	return c.JSON(http.StatusCreated, echo.Map{"data": principalInfo(&principal)})
}

func (a *App) PrincipalUpdate(c echo.Context) error {
	if _, err, statusCode := a.authUser(c, true); err != nil {
		a.l.Error("failed to auth", zap.Error(err))
		return a.er(c, statusCode)
	}

	rctx := c.Request().Context()

	idStr := c.FormValue("id")
	if idStr == "" {
		return a.erMsg(c, http.StatusBadRequest, "id is required")
	}
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		return a.erMsg(c, http.StatusBadRequest, "invalid id")
	}

	yearStr := c.FormValue("year")
	name := c.FormValue("name")
	if yearStr == "" || name == "" {
		return a.erMsg(c, http.StatusBadRequest, "year and name are required")
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return a.erMsg(c, http.StatusBadRequest, "year must be a number")
	}

	var principal models.Principal
	if err := a.db.WithContext(rctx).First(&principal, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return a.er(c, http.StatusNotFound)
		}
		a.l.Error("failed to find principal", zap.Uint64("id", id), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	// Conflict check excludes the record itself
	if taken, err := a.yearTaken(c, year, principal.ID); err != nil {
		a.l.Error("failed to check year", zap.Int("year", year), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	} else if taken {
		return a.erMsg(c, http.StatusConflict, "a principal is already registered for this year")
	}

	principal.Year = year
	principal.Name = name

	var oldKey string
	file, err := readFormFile(c, "image")
	if err != nil {
		a.l.Error("failed to read image", zap.Error(err))
		return a.er(c, http.StatusBadRequest)
	}
	if file != nil {
		key := storage.NewObjectKey(constants.KeyFolderPrincipals, file.Filename)
		if err := a.store.Upload(rctx, key, file.Data, file.ContentType, false); err != nil {
			a.l.Error("failed to upload image", zap.String("key", key), zap.Error(err))
			return a.er(c, http.StatusInternalServerError)
		}
		if principal.ImageURL != nil {
			oldKey = a.store.ExtractKey(*principal.ImageURL)
		}
		url := a.store.PublicURL(key)
		principal.ImageURL = &url
	}

	if err := a.db.WithContext(rctx).Save(&principal).Error; err != nil {
		a.l.Error("failed to update principal", zap.Uint64("id", id), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	a.scheduleCleanup(rctx, oldKey)

	return c.JSON(http.StatusOK, echo.Map{"data": principalInfo(&principal)})
}

func (a *App) PrincipalDelete(c echo.Context) error {
	if _, err, statusCode := a.authUser(c, true); err != nil {
		a.l.Error("failed to auth", zap.Error(err))
		return a.er(c, statusCode)
	}

	rctx := c.Request().Context()

	// id comes as a query parameter, with a JSON body fallback
	idStr := c.QueryParam("id")
	if idStr == "" {
		var body struct {
			ID uint `json:"id"`
		}
		if err := c.Bind(&body); err == nil && body.ID != 0 {
			idStr = strconv.FormatUint(uint64(body.ID), 10)
		}
	}
	if idStr == "" {
		return a.erMsg(c, http.StatusBadRequest, "id is required")
	}
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		return a.erMsg(c, http.StatusBadRequest, "invalid id")
	}

	var principal models.Principal
	if err := a.db.WithContext(rctx).First(&principal, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return a.er(c, http.StatusNotFound)
		}
		a.l.Error("failed to find principal", zap.Uint64("id", id), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	if err := a.db.WithContext(rctx).Delete(&principal).Error; err != nil {
		a.l.Error("failed to delete principal", zap.Uint64("id", id), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	if principal.ImageURL != nil {
		a.scheduleCleanup(rctx, a.store.ExtractKey(*principal.ImageURL))
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
