package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Moderation statuses accepted by the platform's moderation endpoint.
const (
	ModerationRejected      = "rejected"
	ModerationHeldForReview = "heldForReview"
)

type Config struct {
	Port             string
	DataDir          string
	ModerationStatus string
	SpamPatterns     []string
	RunTimeout       time.Duration
	APIRatePerSecond float64
	APIRateBurst     int
	OAuthRedirectURL string
}

func Load() (*Config, error) {
	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
		slog.Info("Defaulting to port", "port", port)
	}

	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "."
	}

	moderationStatus := os.Getenv("MODERATION_STATUS")
	if moderationStatus == "" {
		moderationStatus = ModerationRejected
	}
	if moderationStatus != ModerationRejected && moderationStatus != ModerationHeldForReview {
		return nil, fmt.Errorf("invalid MODERATION_STATUS %q: must be %q or %q",
			moderationStatus, ModerationRejected, ModerationHeldForReview)
	}

	var spamPatterns []string
	if v := os.Getenv("SPAM_PATTERNS"); v != "" {
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				spamPatterns = append(spamPatterns, p)
			}
		}
	}

	runTimeoutStr := os.Getenv("RUN_TIMEOUT")
	if runTimeoutStr == "" {
		runTimeoutStr = "4m"
	}
	runTimeout, err := time.ParseDuration(runTimeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid RUN_TIMEOUT %q: %w", runTimeoutStr, err)
	}

	apiRate := 5.0
	if v := os.Getenv("API_RATE_PER_SECOND"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("invalid API_RATE_PER_SECOND %q", v)
		}
		apiRate = parsed
	}

	apiBurst := 5
	if v := os.Getenv("API_RATE_BURST"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("invalid API_RATE_BURST %q", v)
		}
		apiBurst = parsed
	}

	redirectURL := os.Getenv("OAUTH_REDIRECT_URL")
	if redirectURL == "" {
		redirectURL = "http://localhost:" + port + "/oauth2callback"
	}

	return &Config{
		Port:             port,
		DataDir:          dataDir,
		ModerationStatus: moderationStatus,
		SpamPatterns:     spamPatterns,
		RunTimeout:       runTimeout,
		APIRatePerSecond: apiRate,
		APIRateBurst:     apiBurst,
		OAuthRedirectURL: redirectURL,
	}, nil
}
