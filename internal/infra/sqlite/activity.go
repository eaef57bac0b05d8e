package sqlite

import (
	"context"
	"database/sql"

	"github.com/jobtrail/jobtrail/internal/domain"
)

// ─── Applications ───────────────────────────────────────────────────────────

// InsertApplication stores a new application.
func (d *DB) InsertApplication(ctx context.Context, a domain.Application) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO applications (id, user_id, company, role, status, date_applied, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.UserID, a.Company, a.Role, string(a.Status),
		nullableUnix(a.DateApplied), toUnix(a.CreatedAt), toUnix(a.UpdatedAt),
	)
	return err
}

// GetApplication retrieves one of the user's applications, or nil if absent.
func (d *DB) GetApplication(ctx context.Context, userID, id string) (*domain.Application, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT id, user_id, company, role, status, date_applied, created_at, updated_at
		 FROM applications WHERE id = ? AND user_id = ?`, id, userID)
	return scanApplication(row)
}

// UpdateApplication stores an application's status and applied date.
func (d *DB) UpdateApplication(ctx context.Context, a domain.Application) error {
	_, err := d.db.ExecContext(ctx,
		`UPDATE applications SET company = ?, role = ?, status = ?, date_applied = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		a.Company, a.Role, string(a.Status), nullableUnix(a.DateApplied), toUnix(a.UpdatedAt),
		a.ID, a.UserID,
	)
	return err
}

// ListApplications returns the user's applications, oldest first.
func (d *DB) ListApplications(ctx context.Context, userID string) ([]domain.Application, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT id, user_id, company, role, status, date_applied, created_at, updated_at
		 FROM applications WHERE user_id = ? ORDER BY created_at ASC, id ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var apps []domain.Application
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, *a)
	}
	return apps, rows.Err()
}

func scanApplication(s scanner) (*domain.Application, error) {
	var a domain.Application
	var dateApplied sql.NullInt64
	var createdAt, updatedAt int64
	err := s.Scan(&a.ID, &a.UserID, &a.Company, &a.Role, &a.Status, &dateApplied, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	a.DateApplied = timePtr(dateApplied)
	a.CreatedAt = fromUnix(createdAt)
	a.UpdatedAt = fromUnix(updatedAt)
	return &a, nil
}

// ─── Events ─────────────────────────────────────────────────────────────────

// InsertEvent stores a calendar event.
func (d *DB) InsertEvent(ctx context.Context, e domain.Event) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO events (id, user_id, application_id, type, title, scheduled_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.UserID, nullableString(e.ApplicationID), string(e.Type), e.Title,
		toUnix(e.ScheduledAt), toUnix(e.CreatedAt),
	)
	return err
}

// ListEvents returns the user's events by scheduled time.
func (d *DB) ListEvents(ctx context.Context, userID string) ([]domain.Event, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT id, user_id, application_id, type, title, scheduled_at, created_at
		 FROM events WHERE user_id = ? ORDER BY scheduled_at ASC, id ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		var e domain.Event
		var appID sql.NullString
		var scheduledAt, createdAt int64
		if err := rows.Scan(&e.ID, &e.UserID, &appID, &e.Type, &e.Title, &scheduledAt, &createdAt); err != nil {
			return nil, err
		}
		e.ApplicationID = appID.String
		e.ScheduledAt = fromUnix(scheduledAt)
		e.CreatedAt = fromUnix(createdAt)
		events = append(events, e)
	}
	return events, rows.Err()
}

// ─── Contacts ───────────────────────────────────────────────────────────────

// InsertContact stores a networking contact.
func (d *DB) InsertContact(ctx context.Context, c domain.Contact) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO contacts (id, user_id, name, company, created_at) VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.UserID, c.Name, c.Company, toUnix(c.CreatedAt),
	)
	return err
}

// ListContacts returns the user's contacts, oldest first.
func (d *DB) ListContacts(ctx context.Context, userID string) ([]domain.Contact, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT id, user_id, name, company, created_at
		 FROM contacts WHERE user_id = ? ORDER BY created_at ASC, id ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contacts []domain.Contact
	for rows.Next() {
		var c domain.Contact
		var createdAt int64
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Company, &createdAt); err != nil {
			return nil, err
		}
		c.CreatedAt = fromUnix(createdAt)
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

// ─── Skills ─────────────────────────────────────────────────────────────────

// UpsertSkill inserts or updates a skill.
func (d *DB) UpsertSkill(ctx context.Context, s domain.Skill) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO skills (id, user_id, name, hours_logged, target_hours, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			name=excluded.name, hours_logged=excluded.hours_logged,
			target_hours=excluded.target_hours, updated_at=excluded.updated_at`,
		s.ID, s.UserID, s.Name, s.HoursLogged, s.TargetHours, toUnix(s.CreatedAt), toUnix(s.UpdatedAt),
	)
	return err
}

// GetSkill retrieves one of the user's skills, or nil if absent.
func (d *DB) GetSkill(ctx context.Context, userID, id string) (*domain.Skill, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, hours_logged, target_hours, created_at, updated_at
		 FROM skills WHERE id = ? AND user_id = ?`, id, userID)
	return scanSkill(row)
}

// ListSkills returns the user's skills by name.
func (d *DB) ListSkills(ctx context.Context, userID string) ([]domain.Skill, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT id, user_id, name, hours_logged, target_hours, created_at, updated_at
		 FROM skills WHERE user_id = ? ORDER BY name ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var skills []domain.Skill
	for rows.Next() {
		sk, err := scanSkill(rows)
		if err != nil {
			return nil, err
		}
		skills = append(skills, *sk)
	}
	return skills, rows.Err()
}

func scanSkill(s scanner) (*domain.Skill, error) {
	var sk domain.Skill
	var createdAt, updatedAt int64
	err := s.Scan(&sk.ID, &sk.UserID, &sk.Name, &sk.HoursLogged, &sk.TargetHours, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	sk.CreatedAt = fromUnix(createdAt)
	sk.UpdatedAt = fromUnix(updatedAt)
	return &sk, nil
}
