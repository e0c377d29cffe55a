package notifications

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"

	"github.com/sudipbhatta12/political-app-sub000/internal/config"
	"github.com/sudipbhatta12/political-app-sub000/internal/models"
)

// Service handles sending daily reports via various channels
type Service struct {
	config *config.Config
	client *resty.Client
}

// Ensure Service implements NotificationInterface
var _ NotificationInterface = (*Service)(nil)

// TeamsMessage represents a Microsoft Teams message
type TeamsMessage struct {
	Type     string         `json:"@type"`
	Context  string         `json:"@context"`
	Title    string         `json:"title"`
	Text     string         `json:"text"`
	Sections []TeamsSection `json:"sections,omitempty"`
}

type TeamsSection struct {
	ActivityTitle string      `json:"activityTitle,omitempty"`
	ActivityText  string      `json:"activityText,omitempty"`
	Facts         []TeamsFact `json:"facts,omitempty"`
	Markdown      bool        `json:"markdown,omitempty"`
}

type TeamsFact struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// NewService creates a new notification service
func NewService(cfg *config.Config) *Service {
	return &Service{
		config: cfg,
		client: resty.New().SetTimeout(30 * time.Second),
	}
}

// SendReport sends a daily report via configured notification channels
func (s *Service) SendReport(report *models.DailyReport) error {
	var errors []string

	if s.config.TeamsWebhookURL != "" {
		if err := s.sendToTeams(report); err != nil {
			logrus.Errorf("Failed to send Teams notification: %v", err)
			errors = append(errors, fmt.Sprintf("Teams: %v", err))
		} else {
			logrus.Info("Successfully sent report to Teams")
		}
	}

	if s.config.NotificationEmail != "" {
		if err := s.sendEmail(report); err != nil {
			logrus.Errorf("Failed to send email notification: %v", err)
			errors = append(errors, fmt.Sprintf("Email: %v", err))
		} else {
			logrus.Info("Successfully sent report via email")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("notification errors: %s", strings.Join(errors, "; "))
	}

	return nil
}

func (s *Service) sendToTeams(report *models.DailyReport) error {
	message := s.buildTeamsMessage(report)

	resp, err := s.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(message).
		Post(s.config.TeamsWebhookURL)

	if err != nil {
		return fmt.Errorf("failed to send Teams message: %w", err)
	}

	if resp.StatusCode() != 200 {
		return fmt.Errorf("Teams webhook returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	return nil
}

func (s *Service) buildTeamsMessage(report *models.DailyReport) *TeamsMessage {
	message := &TeamsMessage{
		Type:    "MessageCard",
		Context: "https://schema.org/extensions",
		Title:   fmt.Sprintf("Daily Sentiment Report - %s", report.ReportDate.Format("2006-01-02")),
		Text: fmt.Sprintf("%d posts and %d comments analyzed across %d sources",
			report.TotalPostsAnalyzed, report.TotalCommentsAnalyzed, report.TotalSources),
	}

	facts := []TeamsFact{
		{Name: "Posts Analyzed", Value: fmt.Sprintf("%d", report.TotalPostsAnalyzed)},
		{Name: "Comments Analyzed", Value: fmt.Sprintf("%d", report.TotalCommentsAnalyzed)},
		{Name: "Positive", Value: fmt.Sprintf("%.1f%%", report.OverallPositive)},
		{Name: "Negative", Value: fmt.Sprintf("%.1f%%", report.OverallNegative)},
		{Name: "Neutral", Value: fmt.Sprintf("%.1f%%", report.OverallNeutral)},
		{Name: "Generated", Value: report.GeneratedAt.Format("2006-01-02 15:04:05 UTC")},
	}

	message.Sections = append(message.Sections, TeamsSection{
		ActivityTitle: "Summary",
		Facts:         facts,
		Markdown:      true,
	})

	if report.SummaryText != "" {
		message.Sections = append(message.Sections, TeamsSection{
			ActivityTitle: "Narrative",
			ActivityText:  report.SummaryText,
			Markdown:      true,
		})
	}

	if len(report.Summaries) > 0 {
		var lines []string
		limit := 5
		if len(report.Summaries) < limit {
			limit = len(report.Summaries)
		}

		for i := 0; i < limit; i++ {
			src := report.Summaries[i]
			lines = append(lines, fmt.Sprintf("**%s** - %d posts, %d comments, %.1f%% positive / %.1f%% negative",
				src.SourceName, src.PostCount, src.CommentCount, src.AvgPositive, src.AvgNegative))
		}

		message.Sections = append(message.Sections, TeamsSection{
			ActivityTitle: "Most Active Sources",
			ActivityText:  strings.Join(lines, "\n\n"),
			Markdown:      true,
		})
	}

	return message
}

func (s *Service) sendEmail(report *models.DailyReport) error {
	subject := fmt.Sprintf("Daily Sentiment Report - %s (%d posts)",
		report.ReportDate.Format("2006-01-02"), report.TotalPostsAnalyzed)

	htmlBody, err := s.buildEmailHTML(report)
	if err != nil {
		return fmt.Errorf("failed to build email HTML: %w", err)
	}

	textBody := s.buildEmailText(report)

	m := gomail.NewMessage()
	m.SetHeader("From", s.config.SMTPUsername)
	m.SetHeader("To", s.config.NotificationEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", textBody)
	m.AddAlternative("text/html", htmlBody)

	d := gomail.NewDialer(s.config.SMTPHost, s.config.SMTPPort, s.config.SMTPUsername, s.config.SMTPPassword)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

func (s *Service) buildEmailHTML(report *models.DailyReport) (string, error) {
	tmpl := `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Daily Sentiment Report</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        .header { background-color: #1f4e79; color: white; padding: 20px; border-radius: 5px; }
        .summary { background-color: #f5f5f5; padding: 15px; margin: 20px 0; border-radius: 5px; }
        .source { border-left: 4px solid #1f4e79; padding: 10px; margin: 10px 0; background-color: #fafafa; }
        .source-name { font-weight: bold; margin-bottom: 5px; }
        .source-meta { color: #666; font-size: 0.9em; }
    </style>
</head>
<body>
    <div class="header">
        <h1>Daily Sentiment Report</h1>
        <p>{{.ReportDate.Format "January 2, 2006"}} - generated at {{.GeneratedAt.Format "3:04 PM UTC"}}</p>
    </div>

    <div class="summary">
        <h2>Summary</h2>
        <p><strong>Posts Analyzed:</strong> {{.TotalPostsAnalyzed}}</p>
        <p><strong>Comments Analyzed:</strong> {{.TotalCommentsAnalyzed}}</p>
        <p><strong>Sources:</strong> {{.TotalSources}}</p>
        <p><strong>Sentiment:</strong> {{printf "%.1f" .OverallPositive}}% positive,
           {{printf "%.1f" .OverallNegative}}% negative,
           {{printf "%.1f" .OverallNeutral}}% neutral</p>
        <p>{{.SummaryText}}</p>
    </div>

    {{if .Summaries}}
    <h2>Per-Source Breakdown</h2>
    {{range .Summaries}}
        <div class="source">
            <div class="source-name">{{.SourceName}}</div>
            <div class="source-meta">
                {{.PostCount}} posts | {{.CommentCount}} comments |
                {{printf "%.1f" .AvgPositive}}% positive / {{printf "%.1f" .AvgNegative}}% negative
            </div>
        </div>
    {{end}}
    {{end}}

    <hr>
    <p><small>This report was generated automatically by the sentiment tracker.</small></p>
</body>
</html>
`

	t, err := template.New("email").Parse(tmpl)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, report); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (s *Service) buildEmailText(report *models.DailyReport) string {
	var text strings.Builder

	text.WriteString(fmt.Sprintf("Daily Sentiment Report - %s\n", report.ReportDate.Format("2006-01-02")))
	text.WriteString(fmt.Sprintf("Generated: %s\n\n", report.GeneratedAt.Format("2006-01-02 15:04:05 UTC")))

	text.WriteString("SUMMARY\n")
	text.WriteString("=======\n")
	text.WriteString(fmt.Sprintf("Posts Analyzed: %d\n", report.TotalPostsAnalyzed))
	text.WriteString(fmt.Sprintf("Comments Analyzed: %d\n", report.TotalCommentsAnalyzed))
	text.WriteString(fmt.Sprintf("Sources: %d\n", report.TotalSources))
	text.WriteString(fmt.Sprintf("Sentiment: %.1f%% positive, %.1f%% negative, %.1f%% neutral\n",
		report.OverallPositive, report.OverallNegative, report.OverallNeutral))

	if report.SummaryText != "" {
		text.WriteString("\n" + report.SummaryText + "\n")
	}

	if len(report.Summaries) > 0 {
		text.WriteString("\nPER-SOURCE BREAKDOWN\n")
		text.WriteString("====================\n")

		for i, src := range report.Summaries {
			text.WriteString(fmt.Sprintf("\n%d. %s\n", i+1, src.SourceName))
			text.WriteString(fmt.Sprintf("   Posts: %d | Comments: %d | Engagement: %d\n",
				src.PostCount, src.CommentCount, src.EngagementCount))
			text.WriteString(fmt.Sprintf("   Sentiment: %.1f%% positive / %.1f%% negative / %.1f%% neutral\n",
				src.AvgPositive, src.AvgNegative, src.AvgNeutral))
		}
	}

	text.WriteString("\n---\nThis report was generated automatically by the sentiment tracker.\n")

	return text.String()
}
