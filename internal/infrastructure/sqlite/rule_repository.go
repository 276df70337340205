package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/zjrosen/phonrule/internal/domain"
	"github.com/zjrosen/phonrule/internal/log"
	"github.com/zjrosen/phonrule/internal/ruledoc"
)

const ruleColumns = `name, rule_id, kind, body, created_at, updated_at`

// RuleRepository implements domain.RuleRepository using SQLite. Rules are
// stored as YAML documents keyed by name.
type RuleRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewRuleRepository creates a repository over db. The rules table must
// exist; see Migrate.
func NewRuleRepository(db *sql.DB) *RuleRepository {
	return &RuleRepository{db: db, now: time.Now}
}

var _ domain.RuleRepository = (*RuleRepository)(nil)

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func scanRule(scanner interface{ Scan(...any) error }) (*RuleModel, error) {
	var m RuleModel
	err := scanner.Scan(&m.Name, &m.RuleID, &m.Kind, &m.Body, &m.CreatedAt, &m.UpdatedAt)
	return &m, err
}

// Save stores r, replacing any rule with the same name. The creation time
// of a replaced rule is kept.
func (r *RuleRepository) Save(data *domain.PhonData, rule domain.Rule) error {
	return r.save(r.db, data, rule)
}

// SaveAll stores every rule in one transaction.
func (r *RuleRepository) SaveAll(data *domain.PhonData, rules []domain.Rule) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	for _, rule := range rules {
		if err := r.save(tx, data, rule); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit rules: %w", err)
	}
	log.Debug(log.CatStore, "saved rules", "count", len(rules))
	return nil
}

func (r *RuleRepository) save(db execer, data *domain.PhonData, rule domain.Rule) error {
	if rule.Name() == "" {
		return errors.New("cannot save a rule without a name")
	}
	body, err := ruledoc.Marshal(rule, data)
	if err != nil {
		return fmt.Errorf("failed to encode rule: %w", err)
	}
	now := r.now().Unix()
	_, err = db.Exec(
		`INSERT INTO rules (`+ruleColumns+`) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
			rule_id = excluded.rule_id, kind = excluded.kind, body = excluded.body, updated_at = excluded.updated_at`,
		rule.Name(), string(rule.ID()), string(rule.Kind()), string(body), now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to save rule %s: %w", rule.Name(), err)
	}
	return nil
}

// Load decodes the rule named name into data.
// Returns RuleNotFoundError if no rule has that name.
func (r *RuleRepository) Load(data *domain.PhonData, name string) (domain.Rule, error) {
	m, err := r.find(name)
	if err != nil {
		return nil, err
	}
	rule, err := ruledoc.Unmarshal(data, []byte(m.Body))
	if err != nil {
		return nil, fmt.Errorf("failed to decode rule %s: %w", name, err)
	}
	return rule, nil
}

// Stat describes the rule named name without decoding it.
func (r *RuleRepository) Stat(name string) (StoredRule, error) {
	m, err := r.find(name)
	if err != nil {
		return StoredRule{}, err
	}
	return m.toStored(), nil
}

// Body returns the stored YAML document of the rule named name.
func (r *RuleRepository) Body(name string) ([]byte, error) {
	m, err := r.find(name)
	if err != nil {
		return nil, err
	}
	return []byte(m.Body), nil
}

func (r *RuleRepository) find(name string) (*RuleModel, error) {
	row := r.db.QueryRow(`SELECT `+ruleColumns+` FROM rules WHERE name = ?`, name)
	m, err := scanRule(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.RuleNotFoundError{Key: name}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find rule: %w", err)
	}
	return m, nil
}

// List returns the stored rules ordered by name.
func (r *RuleRepository) List() ([]domain.RuleSummary, error) {
	rows, err := r.db.Query(`SELECT ` + ruleColumns + ` FROM rules ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []domain.RuleSummary
	for rows.Next() {
		m, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rule row: %w", err)
		}
		out = append(out, m.toSummary())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rule rows: %w", err)
	}
	return out, nil
}

// Delete removes the rule named name.
// Returns RuleNotFoundError if no rule has that name.
func (r *RuleRepository) Delete(name string) error {
	result, err := r.db.Exec(`DELETE FROM rules WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete rule: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return &domain.RuleNotFoundError{Key: name}
	}
	return nil
}
