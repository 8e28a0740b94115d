package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"urly/internal/models"
	"urly/internal/registry"
	"urly/internal/scraper"
)

const (
	invalidPropertyURLMsg = "Invalid UR property URL. Expected format: https://www.ur-net.go.jp/chintai/kanto/tokyo/00_0000.html"
	nameLookupTimeout     = 10 * time.Second
)

type SubscribeRequest struct {
	PropertyURL string          `json:"propertyUrl"`
	WebhookURL  string          `json:"webhookUrl"`
	Threshold   json.RawMessage `json:"threshold"`
}

type SubscribeResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
}

type SubscriptionListResponse struct {
	Count         int                   `json:"count"`
	Subscriptions []models.Subscription `json:"subscriptions"`
}

func NewSubscribeHandler(reg *registry.Registry, scrapers *scraper.Registry, resolveName bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var r SubscribeRequest
		if err := c.ShouldBindJSON(&r); err != nil {
			_ = c.Error(NewValidationError("Invalid request"))
			return
		}

		propertyURL := strings.TrimSpace(r.PropertyURL)
		webhookURL := strings.TrimSpace(r.WebhookURL)
		if propertyURL == "" || webhookURL == "" {
			_ = c.Error(NewValidationError("Missing required fields"))
			return
		}

		s := scrapers.FindScraper(propertyURL)
		if s == nil {
			_ = c.Error(NewValidationError(invalidPropertyURLMsg))
			return
		}
		shisya, danchi, err := s.ExtractIDs(propertyURL)
		if err != nil {
			_ = c.Error(NewValidationError(invalidPropertyURLMsg))
			return
		}

		if !isWebhookURL(webhookURL) {
			_ = c.Error(NewValidationError("Invalid webhook URL"))
			return
		}

		threshold, err := parseThreshold(r.Threshold)
		if err != nil {
			_ = c.Error(NewValidationError("Invalid threshold"))
			return
		}

		sub := &models.Subscription{
			ID:              uuid.NewString(),
			PropertyURL:     propertyURL,
			Shisya:          shisya,
			Danchi:          danchi,
			SlackWebhookURL: webhookURL,
			Threshold:       threshold,
			CreatedAt:       time.Now().UTC(),
		}

		if resolveName {
			ctx, cancel := context.WithTimeout(c.Request.Context(), nameLookupTimeout)
			name, err := s.GetName(ctx, propertyURL)
			cancel()
			switch {
			case errors.Is(err, scraper.ErrNameHostNotAllowed):
				log.WithField("url", propertyURL).Debug("Skipping name lookup for listing on another host")
			case err != nil:
				log.WithField("url", propertyURL).Warnf("Could not resolve property name: %v", err)
			default:
				sub.PropertyName = name
			}
		}

		if err := reg.Put(c.Request.Context(), sub); err != nil {
			_ = c.Error(err).SetMeta("Failed to subscribe")
			return
		}

		log.WithField("id", sub.ID).Infof("Subscribed to %s_%s", shisya, danchi)
		c.JSON(http.StatusOK, SubscribeResponse{Success: true, ID: sub.ID})
	}
}

func NewSubscriptionListHandler(reg *registry.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		subs, err := reg.ListAll(c.Request.Context())
		if err != nil {
			_ = c.Error(err).SetMeta("Failed to list subscriptions")
			return
		}

		c.JSON(http.StatusOK, SubscriptionListResponse{Count: len(subs), Subscriptions: subs})
	}
}

func NewUnsubscribeHandler(reg *registry.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")

		if err := reg.Delete(c.Request.Context(), id); err != nil {
			_ = c.Error(err).SetMeta("Failed to unsubscribe")
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// parseThreshold accepts a JSON number or a numeric string, as posted by the
// HTML form. Absent, null and empty values default to models.DefaultThreshold.
func parseThreshold(raw json.RawMessage) (int, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return models.DefaultThreshold, nil
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		text = strings.TrimSpace(text)
		if text == "" {
			return models.DefaultThreshold, nil
		}
	} else {
		text = string(raw)
	}

	threshold, err := strconv.Atoi(text)
	if err != nil {
		return 0, err
	}
	if threshold < 0 {
		return 0, strconv.ErrRange
	}
	return threshold, nil
}

func isWebhookURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "https" || u.Scheme == "http") && u.Host != ""
}
