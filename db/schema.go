// ABOUTME: Database schema definitions
// ABOUTME: The four-entity relational layout: prospects own contacts, samples and activities
package db

import (
	"database/sql"
)

const schema = `
CREATE TABLE IF NOT EXISTS prospects (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	company_name TEXT NOT NULL,
	stage TEXT NOT NULL CHECK(stage IN ('prospection', 'qualification', 'sample_sent', 'rd_test', 'industrial_trial', 'negotiation', 'won', 'lost')),
	country TEXT,
	potential_volume TEXT,
	notes TEXT,
	last_action_date DATETIME,
	created_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_prospects_stage ON prospects(stage);
CREATE INDEX IF NOT EXISTS idx_prospects_last_action ON prospects(last_action_date DESC);

CREATE TABLE IF NOT EXISTS contacts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	prospect_id INTEGER NOT NULL,
	name TEXT NOT NULL CHECK(trim(name) <> ''),
	role TEXT,
	email TEXT,
	phone TEXT,
	FOREIGN KEY (prospect_id) REFERENCES prospects(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_contacts_prospect_id ON contacts(prospect_id);

CREATE TABLE IF NOT EXISTS samples (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	prospect_id INTEGER NOT NULL,
	product TEXT NOT NULL,
	reference TEXT,
	status TEXT NOT NULL DEFAULT 'pending',
	date_sent DATETIME,
	feedback TEXT,
	FOREIGN KEY (prospect_id) REFERENCES prospects(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_samples_prospect_id ON samples(prospect_id);
CREATE INDEX IF NOT EXISTS idx_samples_date_sent ON samples(date_sent);

CREATE TABLE IF NOT EXISTS activities (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	prospect_id INTEGER NOT NULL,
	type TEXT NOT NULL CHECK(type IN ('Note', 'Sample', 'Meeting')),
	content TEXT NOT NULL DEFAULT '',
	date DATETIME NOT NULL,
	FOREIGN KEY (prospect_id) REFERENCES prospects(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_activities_prospect_id ON activities(prospect_id);
CREATE INDEX IF NOT EXISTS idx_activities_date ON activities(date DESC);
`

func InitSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
