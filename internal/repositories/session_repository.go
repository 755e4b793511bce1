package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"

	intconfig "github.com/DiosyStephen/routAfare/internal/config"
	"github.com/DiosyStephen/routAfare/internal/domain"
	"github.com/DiosyStephen/routAfare/internal/domain/models"
)

// SessionRepository persists conversation state as a JSON blob per chat id.
type SessionRepository struct {
	DB *sql.DB
}

func (r SessionRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r SessionRepository) Get(chatID string) (models.Session, bool, error) {
	var state []byte
	err := r.db().QueryRow(`SELECT state FROM chat_sessions WHERE chat_id = ? LIMIT 1`, chatID).Scan(&state)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Session{}, false, nil
	}
	if err != nil {
		return models.Session{}, false, domain.InternalError{Msg: "get session", Err: err}
	}

	var sess models.Session
	if err := json.Unmarshal(state, &sess); err != nil {
		return models.Session{}, false, domain.InternalError{Msg: "decode session", Err: err}
	}
	sess.ChatID = chatID
	return sess, true, nil
}

func (r SessionRepository) Put(session models.Session) error {
	if session.ChatID == "" {
		return domain.ValidationError{Field: "chat_id", Msg: "must not be empty"}
	}
	state, err := json.Marshal(session)
	if err != nil {
		return domain.InternalError{Msg: "encode session", Err: err}
	}

	_, err = r.db().Exec(`
		INSERT INTO chat_sessions (chat_id, state, updated_at)
		VALUES (?, ?, NOW())
		ON DUPLICATE KEY UPDATE state = VALUES(state), updated_at = NOW()
	`, session.ChatID, state)
	if err != nil {
		return domain.InternalError{Msg: "put session", Err: err}
	}
	return nil
}

func (r SessionRepository) Delete(chatID string) error {
	if _, err := r.db().Exec(`DELETE FROM chat_sessions WHERE chat_id = ?`, chatID); err != nil {
		return domain.InternalError{Msg: "delete session", Err: err}
	}
	return nil
}

var _ domain.SessionStore = SessionRepository{}
