package services

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"geoquery/models"
)

// DiscordService exposes the query pipeline as a Discord bot. Messages
// prefixed with the command prefix run through the same dispatcher and
// session flow as HTTP queries; the session is keyed by user and channel so
// each conversation keeps its own transcript and map state.
type DiscordService struct {
	session       *discordgo.Session
	dispatcher    *Dispatcher
	sessions      *SessionManager
	commandPrefix string
	enabled       bool
	startTime     time.Time
	logger        *zap.SugaredLogger
}

// NewDiscordService creates a Discord service instance. Disabled unless
// DISCORD_BOT_TOKEN is set.
func NewDiscordService(dispatcher *Dispatcher, sessions *SessionManager, logger *zap.SugaredLogger) *DiscordService {
	token := os.Getenv("DISCORD_BOT_TOKEN")
	commandPrefix := os.Getenv("DISCORD_COMMAND_PREFIX")

	if commandPrefix == "" {
		commandPrefix = "!geo "
	}

	service := &DiscordService{
		dispatcher:    dispatcher,
		sessions:      sessions,
		commandPrefix: commandPrefix,
		enabled:       false,
		startTime:     time.Now(),
		logger:        logger,
	}

	if token == "" {
		logger.Infow("Discord bot disabled: DISCORD_BOT_TOKEN not set")
		return service
	}

	session, err := discordgo.New("Bot " + token)
	if err != nil {
		logger.Errorw("Error creating Discord session", "error", err)
		return service
	}

	service.session = session

	session.AddHandler(func(s *discordgo.Session, event *discordgo.Ready) {
		logger.Infow("Discord bot online", "user", event.User.Username, "guilds", len(event.Guilds))
	})
	session.AddHandler(service.messageCreate)
	session.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsMessageContent

	service.enabled = true
	logger.Infow("Discord service initialized", "prefix", commandPrefix)

	return service
}

// Start opens the Discord websocket connection
func (d *DiscordService) Start() error {
	if !d.enabled {
		return fmt.Errorf("discord service not enabled (missing bot token)")
	}

	if err := d.session.Open(); err != nil {
		return fmt.Errorf("error opening Discord connection: %w", err)
	}

	d.logger.Infof("Discord bot started. Use '%s<query>' in Discord", d.commandPrefix)
	return nil
}

// Stop closes the Discord connection
func (d *DiscordService) Stop() error {
	if d.session != nil {
		return d.session.Close()
	}
	return nil
}

// messageCreate handles incoming Discord messages
func (d *DiscordService) messageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author.Bot {
		return
	}
	if !strings.HasPrefix(m.Content, d.commandPrefix) {
		return
	}

	query := strings.TrimSpace(m.Content[len(d.commandPrefix):])
	if query == "" {
		d.sendMessage(s, m.ChannelID, fmt.Sprintf("Please provide a query after `%s`", strings.TrimSpace(d.commandPrefix)))
		return
	}

	s.ChannelTyping(m.ChannelID)

	sessionID := fmt.Sprintf("discord_%s_%s", m.Author.ID, m.ChannelID)
	store, _ := d.sessions.GetOrCreate(sessionID)

	if !store.TryBeginQuery() {
		d.sendMessage(s, m.ChannelID, "Still working on your previous query, one moment.")
		return
	}

	history := store.History(historyLimit)
	store.AppendMessage(models.RoleUser, query, nil)

	result := d.dispatcher.Dispatch(context.Background(), query, history)

	summary := fmt.Sprintf("Found %d geospatial results for %q.", len(result.Features), query)
	if result.Metadata != nil && len(result.Metadata.Categories) > 0 {
		var parts []string
		for _, g := range result.Metadata.Categories {
			parts = append(parts, fmt.Sprintf("%s (%d)", g.Name, len(g.Items)))
		}
		summary += " " + strings.Join(parts, ", ") + "."
	}

	store.AppendMessage(models.RoleAssistant, summary, result)
	store.CompleteQuery(result)

	d.sendMessage(s, m.ChannelID, summary)

	d.logger.Infow("Discord query handled",
		"user", m.Author.Username, "channel", m.ChannelID, "query", query, "features", len(result.Features))
}

// sendMessage sends a message to Discord, handling the 2000 character limit
func (d *DiscordService) sendMessage(s *discordgo.Session, channelID, message string) {
	if len(message) <= 2000 {
		if _, err := s.ChannelMessageSend(channelID, message); err != nil {
			d.logger.Errorw("Error sending Discord message", "error", err)
		}
		return
	}

	chunks := d.splitMessage(message, 1900)
	for i, chunk := range chunks {
		if i > 0 {
			chunk = "...continued:\n" + chunk
		}
		if _, err := s.ChannelMessageSend(channelID, chunk); err != nil {
			d.logger.Errorw("Error sending Discord message chunk", "error", err)
		}
		// Small delay between chunks to avoid rate limiting
		time.Sleep(200 * time.Millisecond)
	}
}

// splitMessage splits a message into chunks respecting word boundaries
func (d *DiscordService) splitMessage(message string, maxLength int) []string {
	if len(message) <= maxLength {
		return []string{message}
	}

	var chunks []string
	for len(message) > maxLength {
		splitIndex := maxLength
		if spaceIndex := strings.LastIndex(message[:maxLength], " "); spaceIndex > maxLength/2 {
			splitIndex = spaceIndex
		}

		chunks = append(chunks, message[:splitIndex])
		message = strings.TrimPrefix(message[splitIndex:], " ")
	}

	if len(message) > 0 {
		chunks = append(chunks, message)
	}

	return chunks
}

// IsEnabled returns whether the Discord service is enabled
func (d *DiscordService) IsEnabled() bool {
	return d.enabled
}

// GetStatus returns the current status of the Discord service
func (d *DiscordService) GetStatus() map[string]interface{} {
	status := map[string]interface{}{
		"enabled":        d.enabled,
		"command_prefix": d.commandPrefix,
		"uptime":         time.Since(d.startTime).String(),
	}

	if d.enabled && d.session != nil && d.session.State != nil && d.session.State.User != nil {
		status["status"] = "connected"
		status["user"] = d.session.State.User.Username
		status["guilds"] = len(d.session.State.Guilds)
	} else if d.enabled {
		status["status"] = "initialized_not_started"
	} else {
		status["status"] = "disabled"
		status["note"] = "Set DISCORD_BOT_TOKEN environment variable to enable"
	}

	return status
}
