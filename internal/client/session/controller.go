// Package session orchestrates the session lifecycle (create / join / start
// / pause / stop) against the authority and activates the sync core for the
// chosen session.
package session

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/medigrid/layoutsync/internal/client/transport"
	"github.com/medigrid/layoutsync/internal/models"
	"github.com/medigrid/layoutsync/internal/validation"
	"github.com/medigrid/layoutsync/pkg/api"
)

// Activator is the slice of the sync core the lifecycle controller drives.
type Activator interface {
	Activate(sessionID string)
	Deactivate()
}

// Controller drives session lifecycle calls and feeds session state into the
// rest of the system.
type Controller struct {
	authority transport.Authority
	core      Activator
	logger    *slog.Logger
	role      models.Role

	active models.SessionRecord
}

// NewController creates a lifecycle controller for the given role.
func NewController(authority transport.Authority, core Activator, role models.Role, logger *slog.Logger) *Controller {
	return &Controller{
		authority: authority,
		core:      core,
		logger:    logger,
		role:      role,
	}
}

// Active returns the currently active session record, if any.
func (c *Controller) Active() (models.SessionRecord, bool) {
	return c.active, c.active.ID != ""
}

// List fetches all visible sessions with statuses normalized to the closed
// client vocabulary.
func (c *Controller) List(ctx context.Context) ([]models.SessionRecord, error) {
	items, err := c.authority.ListSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	records := make([]models.SessionRecord, 0, len(items))
	for _, item := range items {
		records = append(records, recordFromItem(item))
	}
	return records, nil
}

// Create creates a new draft session. It does not activate it.
func (c *Controller) Create(ctx context.Context, title string) (models.SessionRecord, error) {
	if !c.role.CanEditLayout() {
		return models.SessionRecord{}, fmt.Errorf("role %s cannot control sessions", c.role)
	}
	if err := validation.ValidateTitle(title); err != nil {
		return models.SessionRecord{}, fmt.Errorf("invalid title: %w", err)
	}
	item, err := c.authority.CreateSession(ctx, title)
	if err != nil {
		return models.SessionRecord{}, fmt.Errorf("create session: %w", err)
	}
	c.logger.Info("session created", "session_id", item.ID, "title", item.Title)
	return recordFromItem(item), nil
}

// Join activates the sync core for the given session.
func (c *Controller) Join(ctx context.Context, sessionID string) (models.SessionRecord, error) {
	record := models.SessionRecord{ID: sessionID, Status: models.StatusIdle}
	items, err := c.authority.ListSessions(ctx)
	if err == nil {
		for _, item := range items {
			if item.ID == sessionID {
				record = recordFromItem(item)
				break
			}
		}
	}
	c.active = record
	c.core.Activate(sessionID)
	c.logger.Info("joined session", "session_id", sessionID, "status", record.Status)
	return record, nil
}

// Start starts the session, creating one first when sessionID is empty, and
// activates it.
func (c *Controller) Start(ctx context.Context, sessionID, title string) (models.SessionRecord, error) {
	if !c.role.CanEditLayout() {
		return models.SessionRecord{}, fmt.Errorf("role %s cannot control sessions", c.role)
	}
	if sessionID == "" {
		created, err := c.Create(ctx, title)
		if err != nil {
			return models.SessionRecord{}, err
		}
		sessionID = created.ID
	}
	if err := c.authority.StartSession(ctx, sessionID); err != nil {
		return models.SessionRecord{}, fmt.Errorf("start session: %w", err)
	}
	if c.active.ID != sessionID {
		c.core.Activate(sessionID)
	}
	c.active = models.SessionRecord{ID: sessionID, Status: models.StatusRunning}
	c.logger.Info("session started", "session_id", sessionID)
	return c.active, nil
}

// Pause pauses the active session.
func (c *Controller) Pause(ctx context.Context) error {
	if !c.role.CanEditLayout() {
		return fmt.Errorf("role %s cannot control sessions", c.role)
	}
	if c.active.ID == "" {
		return fmt.Errorf("no active session")
	}
	if err := c.authority.PauseSession(ctx, c.active.ID); err != nil {
		return fmt.Errorf("pause session: %w", err)
	}
	c.active.Status = models.StatusPaused
	return nil
}

// Stop ends the active session and deactivates the core.
func (c *Controller) Stop(ctx context.Context) error {
	if !c.role.CanEditLayout() {
		return fmt.Errorf("role %s cannot control sessions", c.role)
	}
	if c.active.ID == "" {
		return fmt.Errorf("no active session")
	}
	if err := c.authority.EndSession(ctx, c.active.ID); err != nil {
		return fmt.Errorf("stop session: %w", err)
	}
	c.logger.Info("session stopped", "session_id", c.active.ID)
	c.active = models.SessionRecord{}
	c.core.Deactivate()
	return nil
}

// ApplyStatusEvent folds an authority-pushed status string into the active
// record.
func (c *Controller) ApplyStatusEvent(raw string) {
	if c.active.ID == "" {
		return
	}
	c.active.Status = models.NormalizeStatus(raw)
}

func recordFromItem(item api.SessionItem) models.SessionRecord {
	return models.SessionRecord{
		ID:     item.ID,
		Title:  item.Title,
		Status: models.NormalizeStatus(item.Status),
	}
}
