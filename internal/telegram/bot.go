package telegram

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"fitplanner/internal/clipper"
	"fitplanner/internal/config"
	"fitplanner/internal/metrics"
	"fitplanner/internal/plan"
	"fitplanner/internal/planner"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const redoSessionTTL = 3600 // seconds

// Bot wraps the Telegram API, Meal Planner, and Clipper.
type Bot struct {
	api          *tgbotapi.BotAPI
	planner      *planner.Planner
	clipper      *clipper.Clipper
	metricsStore *metrics.Store
	sessions     *SessionRepository
	planRepo     *planner.PlanRepository
	cfg          *config.Config
}

// NewBot initializes the Telegram Bot and sets the Webhook.
func NewBot(
	cfg *config.Config,
	planner *planner.Planner,
	clipper *clipper.Clipper,
	metricsStore *metrics.Store,
	sessions *SessionRepository,
	planRepo *planner.PlanRepository,
) (*Bot, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}

	log.Printf("Authorized on account %s", bot.Self.UserName)

	webhookURL := cfg.TelegramWebhookURL
	wh, _ := tgbotapi.NewWebhook(webhookURL)
	resp, err := bot.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", webhookURL, err)
	}
	log.Printf("Webhook set response: %s", resp.Description)

	return &Bot{
		api:          bot,
		planner:      planner,
		clipper:      clipper,
		metricsStore: metricsStore,
		sessions:     sessions,
		planRepo:     planRepo,
		cfg:          cfg,
	}, nil
}

// RegisterHandlers registers the webhook handler with the default HTTP mux.

func (b *Bot) RegisterHandlers() {
	http.HandleFunc("/webhook", b.handleWebhook)
	http.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	update, err := b.api.HandleUpdate(r)
	if err != nil {
		log.Printf("Error parsing update: %v", err)
		return
	}

	if update.Message == nil {
		return
	}

	if update.Message.From.ID != b.cfg.TelegramAllowUserID {
		log.Printf("⚠️ Unauthorized access attempt from UserID: %d (@%s)", update.Message.From.ID, update.Message.From.UserName)
		return
	}

	go b.processMessage(update.Message)
}

func (b *Bot) processMessage(msg *tgbotapi.Message) {
	// 0. Handle Commands
	if msg.Text == "/metrics" {
		b.handleMetricsCommand(msg.Chat.ID)
		return
	}
	if msg.Text == "/redo" {
		b.handleRedoRequest(msg)
		return
	}
	if msg.Text == "/plans" {
		b.handleRecentPlans(msg)
		return
	}

	// 1. Detect if it's a URL (Clipper mode) or a request (Planner mode)
	if strings.HasPrefix(msg.Text, "http://") || strings.HasPrefix(msg.Text, "https://") {
		b.handleClipperRequest(msg)
		return
	}

	// 2. Default to Planner mode
	b.handlePlannerRequest(msg)
}

func (b *Bot) handleClipperRequest(msg *tgbotapi.Message) {
	statusText := "✂️ *Clipping recipe...* \n(Extracting and saving to your blog)"
	replyMsg := tgbotapi.NewMessage(msg.Chat.ID, statusText)
	replyMsg.ParseMode = "Markdown"
	sentMsg, err := b.api.Send(replyMsg)
	if err != nil {
		log.Printf("Failed to send initial reply: %v", err)
		return
	}

	ctx := context.Background()

	// --- Clipper Flow ---
	post, err := b.clipper.ClipURL(ctx, msg.Text)
	var finalText string
	if err != nil {
		log.Printf("Error clipping recipe: %v", err)
		safeErr := strings.ReplaceAll(err.Error(), "`", "'")
		finalText = fmt.Sprintf("❌ *Error clipping recipe:*\n```\n%v\n```", safeErr)
	} else {
		finalText = fmt.Sprintf("✅ *Recipe Saved!*\n\n*Title:* %s\n*URL:* %s/%s", post.Title, b.cfg.GhostURL, post.ID)
	}
	edit := tgbotapi.NewEditMessageText(msg.Chat.ID, sentMsg.MessageID, finalText)
	edit.ParseMode = "Markdown"
	b.api.Send(edit)
}

func (b *Bot) handlePlannerRequest(msg *tgbotapi.Message) {
	statusText := "🧑‍🍳 *Thinking...* \n(Generating and validating your plan)"
	replyMsg := tgbotapi.NewMessage(msg.Chat.ID, statusText)
	replyMsg.ParseMode = "Markdown"
	sentMsg, err := b.api.Send(replyMsg)
	if err != nil {
		log.Printf("Failed to send initial reply: %v", err)
		return
	}

	ctx := context.Background()

	log.Printf("Generating plan for request: %s", msg.Text)
	userID := fmt.Sprintf("%d", msg.From.ID)

	b.generateAndSendPlan(ctx, userID, msg.Chat.ID, sentMsg.MessageID, msg.Text)
}

// handleRedoRequest regenerates the most recently delivered plan, reusing the
// original request stored in the review session.
func (b *Bot) handleRedoRequest(msg *tgbotapi.Message) {
	ctx := context.Background()
	userID := fmt.Sprintf("%d", msg.From.ID)

	session, err := b.sessions.GetActive(ctx, userID, time.Now())
	if err != nil || session == nil || session.SessionType != "plan_review" {
		reply := tgbotapi.NewMessage(msg.Chat.ID, "🤷 No recent plan to redo. Send me a request first.")
		b.api.Send(reply)
		return
	}

	data, err := session.GetContextData()
	if err != nil || data.OriginalRequest == "" {
		b.api.Send(tgbotapi.NewMessage(msg.Chat.ID, "🤷 No recent plan to redo. Send me a request first."))
		return
	}

	replyMsg := tgbotapi.NewMessage(msg.Chat.ID, "🧑‍🍳 *Thinking...* \n(Regenerating your plan)")
	replyMsg.ParseMode = "Markdown"
	sentMsg, err := b.api.Send(replyMsg)
	if err != nil {
		log.Printf("Failed to send initial reply: %v", err)
		return
	}

	b.sessions.Delete(ctx, session.ID)
	b.generateAndSendPlan(ctx, userID, msg.Chat.ID, sentMsg.MessageID, data.OriginalRequest)
}

// handleRecentPlans replies with the user's latest stored plans so an older
// plan ID can be republished via the CLI.
func (b *Bot) handleRecentPlans(msg *tgbotapi.Message) {
	ctx := context.Background()
	userID := fmt.Sprintf("%d", msg.From.ID)

	stored, err := b.planRepo.ListRecentByUserID(ctx, userID, 5)
	if err != nil {
		log.Printf("Error listing plans for user %s: %v", userID, err)
		b.api.Send(tgbotapi.NewMessage(msg.Chat.ID, "❌ Error fetching your plans."))
		return
	}

	reply := tgbotapi.NewMessage(msg.Chat.ID, formatRecentPlans(stored))
	reply.ParseMode = "Markdown"
	b.api.Send(reply)
}

func formatRecentPlans(stored []planner.StoredPlan) string {
	if len(stored) == 0 {
		return "🤷 No plans yet. Send me a request to generate one."
	}

	var sb strings.Builder
	sb.WriteString("🗂 *Your Recent Plans*\n\n")
	for _, sp := range stored {
		sb.WriteString(fmt.Sprintf("• `%s` (%s)", sp.PlanID, sp.CreatedAt.Format("2006-01-02")))
		if weekly, err := sp.Plan(); err == nil {
			if name := weekly.FirstRecipeName(); name != "" {
				sb.WriteString(fmt.Sprintf(", starts with %s", name))
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (b *Bot) generateAndSendPlan(ctx context.Context, userID string, chatID int64, messageID int, request string) {
	weekly, metas, err := b.planner.GeneratePlan(ctx, userID, request)

	// Record Metrics even if it errored (if we have metas)
	for _, m := range metas {
		if recErr := b.metricsStore.RecordMeta(ctx, m); recErr != nil {
			log.Printf("Warning: failed to record metrics for stage %s: %v", m.Stage, recErr)
		}
		if m.RecoveryStrategy != "" {
			_ = b.metricsStore.RecordRecovery(ctx, metrics.MapRecovery(m.RecoveryStrategy, m.Latency))
		}
	}

	if err != nil {
		log.Printf("Error generating plan: %v", err)
		safeErr := strings.ReplaceAll(err.Error(), "`", "'")
		finalText := fmt.Sprintf("❌ *Could not produce a valid plan:*\n```\n%v\n```\nTry rephrasing your request.", safeErr)
		edit := tgbotapi.NewEditMessageText(chatID, messageID, finalText)
		edit.ParseMode = "Markdown"
		b.api.Send(edit)
		return
	}

	planText, shoppingListText := formatPlanMarkdownParts(weekly)

	// Edit message with the Plan
	edit := tgbotapi.NewEditMessageText(chatID, messageID, planText)
	edit.ParseMode = "Markdown"
	b.api.Send(edit)

	// Send second message with the Shopping List
	shoppingMsg := tgbotapi.NewMessage(chatID, shoppingListText)
	shoppingMsg.ParseMode = "Markdown"
	b.api.Send(shoppingMsg)

	// Remember the request so /redo can regenerate it; purge expired
	// sessions while we are here so the table does not grow unbounded.
	if err := b.sessions.CleanupExpired(ctx); err != nil {
		log.Printf("Warning: failed to clean up expired sessions: %v", err)
	}
	if _, serr := b.sessions.Create(ctx, userID, "plan_review", "awaiting_feedback", SessionContextData{
		PlanID:          weekly.ID,
		OriginalRequest: request,
	}, redoSessionTTL); serr != nil {
		log.Printf("Warning: failed to create review session for user %s: %v", userID, serr)
	}
}

func formatPlanMarkdownParts(weekly *plan.WeeklyPlan) (string, string) {
	var pb strings.Builder
	pb.WriteString("📅 *Weekly Meal Plan*\n\n")

	for _, day := range weekly.Days {
		pb.WriteString(fmt.Sprintf("*%s*\n", day.Day))
		for _, meal := range day.Meals {
			pb.WriteString(fmt.Sprintf("• %s: %s", meal.MealType, meal.Recipe.Name))
			if meal.Recipe.Nutrition.Calories > 0 {
				pb.WriteString(fmt.Sprintf(" (~%.0f kcal)", meal.Recipe.Nutrition.Calories))
			}
			pb.WriteString("\n")
		}
		if day.DailyNutrition.Calories > 0 {
			pb.WriteString(fmt.Sprintf("_Daily total: ~%.0f kcal_\n", day.DailyNutrition.Calories))
		}
		pb.WriteString("\n")
	}

	if len(weekly.MealPrepTips) > 0 {
		pb.WriteString("💡 *Meal Prep Tips*\n")
		for _, tip := range weekly.MealPrepTips {
			pb.WriteString(fmt.Sprintf("• %s\n", tip))
		}
	}

	var sb strings.Builder
	sb.WriteString("🛒 *Shopping List*\n\n")
	for _, category := range plan.ShoppingCategories {
		items := weekly.ShoppingList[category]
		if len(items) == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("*%s*\n", strings.ToUpper(category[:1])+category[1:]))
		for _, item := range items {
			sb.WriteString(fmt.Sprintf("• %s\n", item))
		}
		sb.WriteString("\n")
	}

	return pb.String(), sb.String()
}

func (b *Bot) handleMetricsCommand(chatID int64) {
	ctx := context.Background()

	usage, err := b.metricsStore.GetDailyUsage(ctx, 7)
	if err != nil {
		b.api.Send(tgbotapi.NewMessage(chatID, "❌ Error fetching metrics."))
		return
	}
	recoveries, err := b.metricsStore.RecoveryBreakdown(ctx, 7)
	if err != nil {
		b.api.Send(tgbotapi.NewMessage(chatID, "❌ Error fetching metrics."))
		return
	}

	health := metrics.GetSysHealth("data")

	var sb strings.Builder
	sb.WriteString("📊 *Usage & Health Report*\n\n")

	sb.WriteString("🗓 *Recent LLM Activity*\n")
	if len(usage) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, d := range usage {
		sb.WriteString(fmt.Sprintf("• *%s*: %d tokens (%d execs)\n", d.Date, d.TotalPrompt+d.TotalCompletion, d.TotalExecution))
	}

	sb.WriteString("\n🛠 *Recovery Outcomes (7d)*\n")
	if len(recoveries) == 0 {
		sb.WriteString("_No recoveries recorded_\n")
	}
	for _, strategy := range []string{"parsed", "text-mining", "none"} {
		if count, ok := recoveries[strategy]; ok {
			sb.WriteString(fmt.Sprintf("• %s: %d\n", strategy, count))
		}
	}

	sb.WriteString("\n🧠 *System Health*\n")
	sb.WriteString(fmt.Sprintf("• RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB))
	sb.WriteString(fmt.Sprintf("• Goroutines: %d\n", health.Goroutines))
	sb.WriteString(fmt.Sprintf("• Disk Data: %s\n", health.DataDiskSize))

	msg := tgbotapi.NewMessage(chatID, sb.String())
	msg.ParseMode = "Markdown"
	b.api.Send(msg)
}
