package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"school-site-console/app/server/constants"
	"school-site-console/app/server/models"
	"school-site-console/app/server/storage"
)

// One entry per asset slot on the singleton row. Adding a slot here is all it
// takes for upload, supersede-and-clean and signing to cover it; the old-key
// reversal must never be reimplemented per field.
type schoolAssetField struct {
	formKey string
	folder  string
	column  string // response key, matches the stored row's JSON field
	field   func(*models.SchoolDetails) **string
}

var schoolAssetFields = []schoolAssetField{
	{"greetingImage", "greeting", "greeting_url", func(d *models.SchoolDetails) **string { return &d.GreetingURL }},
	{"schoolLogoImage", "school_logo", "school_logo_url", func(d *models.SchoolDetails) **string { return &d.SchoolLogoURL }},
	{"principalImage", "principal", "principal_image_url", func(d *models.SchoolDetails) **string { return &d.PrincipalImageURL }},
	{"mottoImage", "motto", "motto_url", func(d *models.SchoolDetails) **string { return &d.MottoURL }},
	{"flowerImage", "flower", "school_flower_url", func(d *models.SchoolDetails) **string { return &d.SchoolFlowerURL }},
	{"treeImage", "tree", "school_tree_url", func(d *models.SchoolDetails) **string { return &d.SchoolTreeURL }},
	{"anthemSheetImage", "anthem_sheet", "anthem_sheet_url", func(d *models.SchoolDetails) **string { return &d.AnthemSheetURL }},
	{"anthemAudio", "anthem_audio", "anthem_audio_url", func(d *models.SchoolDetails) **string { return &d.AnthemAudioURL }},
}

type SchoolDetailsRow struct {
	ID                uint    `json:"id"`
	FoundingDate      *string `json:"founding_date"`
	PrincipalName     *string `json:"principal_name"`
	PrincipalImageURL *string `json:"principal_image_url"`
	GreetingURL       *string `json:"greeting_url"`
	SchoolLogoURL     *string `json:"school_logo_url"`
	MottoURL          *string `json:"motto_url"`
	SchoolFlowerURL   *string `json:"school_flower_url"`
	SchoolTreeURL     *string `json:"school_tree_url"`
	AnthemSheetURL    *string `json:"anthem_sheet_url"`
	AnthemAudioURL    *string `json:"anthem_audio_url"`
}

func schoolDetailsRow(d *models.SchoolDetails) *SchoolDetailsRow {
	return &SchoolDetailsRow{
		ID:                d.ID,
		FoundingDate:      d.FoundingDate,
		PrincipalName:     d.PrincipalName,
		PrincipalImageURL: d.PrincipalImageURL,
		GreetingURL:       d.GreetingURL,
		SchoolLogoURL:     d.SchoolLogoURL,
		MottoURL:          d.MottoURL,
		SchoolFlowerURL:   d.SchoolFlowerURL,
		SchoolTreeURL:     d.SchoolTreeURL,
		AnthemSheetURL:    d.AnthemSheetURL,
		AnthemAudioURL:    d.AnthemAudioURL,
	}
}

func (a *App) SchoolDetailsGet(c echo.Context) error {
	if _, err, statusCode := a.authUser(c, false); err != nil {
		a.l.Error("failed to auth", zap.Error(err))
		return a.er(c, statusCode)
	}

	rctx := c.Request().Context()

	var details models.SchoolDetails
	if err := a.db.WithContext(rctx).First(&details, models.SchoolDetailsSingletonID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusOK, echo.Map{"row": nil})
		}
		a.l.Error("failed to get school details", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	res := echo.Map{"row": schoolDetailsRow(&details)}

	// Non-public buckets: hand out time-limited URLs next to the stored row.
	// A field that fails to sign just comes back null.
	if a.signReads {
		signed := map[string]*string{}
		for _, f := range schoolAssetFields {
			stored := *f.field(&details)
			var signedURL *string
			if stored != nil {
				if key := a.store.ExtractKey(*stored); key != "" {
					signedURL = a.store.SignedURL(rctx, key, constants.SignedURLTTL)
				}
			}
			signed[f.column] = signedURL
		}
		res["signed"] = signed
	}

	c.Response().Header().Set("Cache-Control", "public, max-age=60, s-maxage=300, stale-while-revalidate=600")
	return c.JSON(http.StatusOK, res)
}

func (a *App) SchoolDetailsSave(c echo.Context) error {
	if _, err, statusCode := a.authUser(c, true); err != nil {
		a.l.Error("failed to auth", zap.Error(err))
		return a.er(c, statusCode)
	}

	rctx := c.Request().Context()

	// Existing singleton row, if any. Needed to recover superseded keys.
	var existing *models.SchoolDetails
	{
		var row models.SchoolDetails
		if err := a.db.WithContext(rctx).First(&row, models.SchoolDetailsSingletonID).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				a.l.Error("failed to get school details", zap.Error(err))
				return a.er(c, http.StatusInternalServerError)
			}
		} else {
			existing = &row
		}
	}

	details := models.SchoolDetails{ID: models.SchoolDetailsSingletonID}
	if existing != nil {
		details = *existing
	}

	// The two text fields always follow the form
	if foundingDate := c.FormValue("foundingDate"); foundingDate != "" {
		details.FoundingDate = &foundingDate
	} else {
		details.FoundingDate = nil
	}
	if principalName := c.FormValue("principalName"); principalName != "" {
		details.PrincipalName = &principalName
	} else {
		details.PrincipalName = nil
	}

	// Asset fields update independently: only slots that received a file
	// change, and only those schedule their prior object for deletion.
	var (
		staleKeys []string
		freshURLs = map[string]*string{}
	)
	for _, f := range schoolAssetFields {
		file, err := readFormFile(c, f.formKey)
		if err != nil {
			a.l.Error("failed to read form file", zap.String("field", f.formKey), zap.Error(err))
			return a.er(c, http.StatusBadRequest)
		}
		if file == nil {
			freshURLs[f.column] = nil
			continue
		}

		key := storage.NewObjectKey(f.folder, file.Filename)
		if err := a.store.Upload(rctx, key, file.Data, file.ContentType, true); err != nil {
			a.l.Error("failed to upload asset", zap.String("key", key), zap.Error(err))
			return a.er(c, http.StatusInternalServerError)
		}
		url := a.store.PublicURL(key)
		freshURLs[f.column] = &url

		if existing != nil {
			if old := *f.field(existing); old != nil {
				if oldKey := a.store.ExtractKey(*old); oldKey != "" {
					staleKeys = append(staleKeys, oldKey)
				}
			}
		}

		*f.field(&details) = &url
	}

	// Upsert by the fixed id
	if existing != nil {
		if err := a.db.WithContext(rctx).Save(&details).Error; err != nil {
			a.l.Error("failed to update school details", zap.Error(err))
			return a.er(c, http.StatusInternalServerError)
		}
	} else {
		if err := a.db.WithContext(rctx).Create(&details).Error; err != nil {
			a.l.Error("failed to create school details", zap.Error(err))
			return a.er(c, http.StatusInternalServerError)
		}
	}

	a.scheduleCleanup(rctx, staleKeys...)

	return c.JSON(http.StatusOK, echo.Map{
		"message": "saved",
		"urls":    freshURLs,
	})
}
