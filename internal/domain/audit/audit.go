package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"opsflow/internal/platform/db"
	"opsflow/internal/requestctx"
)

const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionBatch  = "batch"
	ActionRenew  = "renew"
	ActionMove   = "move"
)

type Event struct {
	ID         string          `json:"id"`
	Actor      string          `json:"actor"`
	Action     string          `json:"action"`
	EntityType string          `json:"entityType"`
	EntityID   string          `json:"entityId"`
	RequestID  string          `json:"requestId"`
	IP         string          `json:"ip"`
	CreatedAt  time.Time       `json:"createdAt"`
	Before     json.RawMessage `json:"before,omitempty"`
	After      json.RawMessage `json:"after,omitempty"`
}

type Filter struct {
	Action     string
	EntityType string
	EntityID   string
	Actor      string
}

// Recorder is what write paths depend on.
type Recorder interface {
	Record(ctx context.Context, action, entityType, entityID string, before, after any) error
}

type Service struct {
	DB db.Conn
}

func New(conn db.Conn) *Service {
	return &Service{DB: conn}
}

// Record stores one event. Actor, request id and client IP are taken from ctx.
func (s *Service) Record(ctx context.Context, action, entityType, entityID string, before, after any) error {
	beforeJSON, err := marshal(before)
	if err != nil {
		return fmt.Errorf("marshal before: %w", err)
	}
	afterJSON, err := marshal(after)
	if err != nil {
		return fmt.Errorf("marshal after: %w", err)
	}

	_, err = s.DB.Exec(ctx, `
    INSERT INTO audit_events (actor, action, entity_type, entity_id, before_json, after_json, request_id, ip)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
  `, db.NullIfEmpty(ActorOf(ctx)), action, entityType, db.NullIfEmpty(entityID), beforeJSON, afterJSON,
		db.NullIfEmpty(requestctx.GetRequestID(ctx)), db.NullIfEmpty(requestctx.GetClientIP(ctx)))
	return err
}

func (s *Service) Count(ctx context.Context, filter Filter) (int, error) {
	query, args := buildBaseQuery("SELECT COUNT(1)", filter)
	var total int
	if err := s.DB.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Service) List(ctx context.Context, filter Filter, includeDetails bool, limit, offset int) ([]Event, error) {
	selectCols := "id, COALESCE(actor, ''), action, entity_type, COALESCE(entity_id, ''), COALESCE(request_id, ''), COALESCE(ip, ''), created_at"
	if includeDetails {
		selectCols += ", before_json, after_json"
	}
	query, args := buildBaseQuery("SELECT "+selectCols, filter)
	query += fmt.Sprintf(" ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Event{}
	for rows.Next() {
		var evt Event
		dest := []any{&evt.ID, &evt.Actor, &evt.Action, &evt.EntityType, &evt.EntityID, &evt.RequestID, &evt.IP, &evt.CreatedAt}
		if includeDetails {
			dest = append(dest, &evt.Before, &evt.After)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		out = append(out, evt)
	}
	return out, rows.Err()
}

// ActorOf names the caller for the audit log: email when the token carries one, else the subject.
func ActorOf(ctx context.Context) string {
	actor, ok := requestctx.GetActor(ctx)
	if !ok {
		return ""
	}
	if actor.Email != "" {
		return actor.Email
	}
	return actor.Subject
}

func marshal(value any) ([]byte, error) {
	if value == nil {
		return nil, nil
	}
	return json.Marshal(value)
}

func buildBaseQuery(prefix string, filter Filter) (string, []any) {
	var conds []string
	var args []any
	add := func(expr, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		conds = append(conds, fmt.Sprintf(expr, len(args)))
	}
	add("action = $%d", filter.Action)
	add("entity_type = $%d", filter.EntityType)
	add("entity_id = $%d", filter.EntityID)
	add("actor = $%d", filter.Actor)

	query := prefix + " FROM audit_events"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	return query, args
}
