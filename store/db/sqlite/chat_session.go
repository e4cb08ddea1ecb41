package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/campusfinds/campusfinds/store"
)

func (d *DB) CreateChatSession(ctx context.Context, create *store.ChatSession) (*store.ChatSession, error) {
	fields := []string{"uid", "user_id", "is_active"}
	placeholderValues := []any{create.UID, create.UserID, create.IsActive}

	if create.CreatedTs != 0 {
		fields = append(fields, "created_ts")
		placeholderValues = append(placeholderValues, create.CreatedTs)
	}
	if create.UpdatedTs != 0 {
		fields = append(fields, "updated_ts")
		placeholderValues = append(placeholderValues, create.UpdatedTs)
	}

	// The partial unique index on (user_id) WHERE is_active turns a lost
	// create race into a no-op instead of a second active session.
	stmt := `INSERT INTO chat_session (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(placeholderValues)) + `)
		ON CONFLICT (user_id) WHERE is_active = 1 DO NOTHING
		RETURNING id, created_ts, updated_ts`

	if err := d.db.QueryRowContext(ctx, stmt, placeholderValues...).Scan(
		&create.ID,
		&create.CreatedTs,
		&create.UpdatedTs,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to create chat session: %w", err)
	}

	return create, nil
}

func (d *DB) ListChatSessions(ctx context.Context, find *store.FindChatSession) ([]*store.ChatSession, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "chat_session.id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.UID; v != nil {
		where, args = append(where, "chat_session.uid = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.UserID; v != nil {
		where, args = append(where, "chat_session.user_id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.IsActive; v != nil {
		where, args = append(where, "chat_session.is_active = "+placeholder(len(args)+1)), append(args, *v)
	}

	query := `
		SELECT id, uid, user_id, is_active, created_ts, updated_ts
		FROM chat_session
		WHERE ` + strings.Join(where, " AND ") + ` ORDER BY chat_session.created_ts DESC, chat_session.id DESC`

	if find.Limit != nil {
		query = fmt.Sprintf("%s LIMIT %d", query, *find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query chat sessions: %w", err)
	}
	defer rows.Close()

	list := make([]*store.ChatSession, 0)
	for rows.Next() {
		var session store.ChatSession
		if err := rows.Scan(
			&session.ID,
			&session.UID,
			&session.UserID,
			&session.IsActive,
			&session.CreatedTs,
			&session.UpdatedTs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan chat session: %w", err)
		}
		list = append(list, &session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate chat sessions: %w", err)
	}

	return list, nil
}

func (d *DB) UpdateChatSession(ctx context.Context, update *store.UpdateChatSession) error {
	set, args := []string{}, []any{}

	if v := update.IsActive; v != nil {
		set, args = append(set, "is_active = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.UpdatedTs; v != nil {
		set, args = append(set, "updated_ts = "+placeholder(len(args)+1)), append(args, *v)
	}
	if len(set) == 0 {
		return nil
	}

	args = append(args, update.ID)
	stmt := `UPDATE chat_session SET ` + strings.Join(set, ", ") + ` WHERE id = ` + placeholder(len(args))
	if _, err := d.db.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("failed to update chat session: %w", err)
	}
	return nil
}

// DeleteChatSession removes the session's messages and then the session row
// in one transaction so messages never outlive their session.
func (d *DB) DeleteChatSession(ctx context.Context, delete *store.DeleteChatSession) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM chat_message WHERE session_id = ?", delete.ID); err != nil {
		return fmt.Errorf("failed to delete chat messages: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM chat_session WHERE id = ?", delete.ID); err != nil {
		return fmt.Errorf("failed to delete chat session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (d *DB) CreateChatMessage(ctx context.Context, create *store.ChatMessage) (*store.ChatMessage, error) {
	fields := []string{"uid", "session_id", "role", "content"}
	placeholderValues := []any{create.UID, create.SessionID, create.Role, create.Content}

	if create.CreatedTs != 0 {
		fields = append(fields, "created_ts")
		placeholderValues = append(placeholderValues, create.CreatedTs)
	}

	stmt := `INSERT INTO chat_message (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(placeholderValues)) + `)
		RETURNING id, created_ts`

	if err := d.db.QueryRowContext(ctx, stmt, placeholderValues...).Scan(
		&create.ID,
		&create.CreatedTs,
	); err != nil {
		return nil, fmt.Errorf("failed to create chat message: %w", err)
	}

	return create, nil
}

func (d *DB) ListChatMessages(ctx context.Context, find *store.FindChatMessage) ([]*store.ChatMessage, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "chat_message.id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.UID; v != nil {
		where, args = append(where, "chat_message.uid = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.SessionID; v != nil {
		where, args = append(where, "chat_message.session_id = "+placeholder(len(args)+1)), append(args, *v)
	}

	// Most recent messages, restored to chronological order by the caller.
	query := `
		SELECT id, uid, session_id, role, content, created_ts
		FROM chat_message
		WHERE ` + strings.Join(where, " AND ") + ` ORDER BY chat_message.created_ts DESC, chat_message.id DESC`

	if find.Limit != nil {
		query = fmt.Sprintf("%s LIMIT %d", query, *find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query chat messages: %w", err)
	}
	defer rows.Close()

	list := make([]*store.ChatMessage, 0)
	for rows.Next() {
		var message store.ChatMessage
		if err := rows.Scan(
			&message.ID,
			&message.UID,
			&message.SessionID,
			&message.Role,
			&message.Content,
			&message.CreatedTs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan chat message: %w", err)
		}
		list = append(list, &message)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate chat messages: %w", err)
	}

	return list, nil
}

func (d *DB) DeleteChatMessages(ctx context.Context, delete *store.DeleteChatMessage) error {
	where, args := []string{"1 = 1"}, []any{}

	if v := delete.ID; v != nil {
		where, args = append(where, "id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := delete.SessionID; v != nil {
		where, args = append(where, "session_id = "+placeholder(len(args)+1)), append(args, *v)
	}

	stmt := `DELETE FROM chat_message WHERE ` + strings.Join(where, " AND ")
	if _, err := d.db.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("failed to delete chat messages: %w", err)
	}
	return nil
}
