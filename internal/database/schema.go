package database

import (
	"context"
	"database/sql"
)

// ActiveSlotIndex is the name of the unique index that arbitrates
// concurrent booking attempts. Operators can verify the durable contract
// with SHOW INDEX FROM reservations.
const ActiveSlotIndex = "uk_room_date_slot_active"

// schemaStatements defines the durable schema contract. The reservations
// table carries the system's one correctness-critical constraint: MySQL
// has no partial unique indexes, so active_slot_key is a STORED generated
// column that is NULL for cancelled rows and a room|date|slot composite
// for active ones. NULL values never collide in a MySQL unique index, so
// any number of cancelled rows may share a tuple while at most one
// PENDING/CONFIRMED row can hold it. Two concurrent inserts for the same
// tuple therefore race on the index itself; the loser fails with a
// duplicate-key error (1062) at commit.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS restaurants (
		id         CHAR(36)     NOT NULL,
		name       VARCHAR(255) NOT NULL,
		city       VARCHAR(120) NOT NULL,
		created_at DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		KEY idx_restaurants_city (city)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS rooms (
		id                     CHAR(36)     NOT NULL,
		restaurant_id          CHAR(36)     NOT NULL,
		name                   VARCHAR(255) NOT NULL,
		min_capacity           INT          NOT NULL,
		max_capacity           INT          NOT NULL,
		minimum_spend_cents    BIGINT       NULL,
		minimum_spend_currency CHAR(3)      NULL,
		active                 TINYINT(1)   NOT NULL DEFAULT 1,
		created_at             DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at             DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		KEY idx_rooms_restaurant (restaurant_id),
		CONSTRAINT fk_rooms_restaurant FOREIGN KEY (restaurant_id) REFERENCES restaurants (id),
		CONSTRAINT chk_rooms_capacity CHECK (min_capacity >= 1 AND max_capacity >= min_capacity)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS reservations (
		id                  CHAR(36)     NOT NULL,
		restaurant_id       CHAR(36)     NOT NULL,
		room_id             CHAR(36)     NOT NULL,
		reservation_date    DATE         NOT NULL,
		time_slot           ENUM('BREAKFAST','LUNCH','DINNER','LATE_NIGHT') NOT NULL,
		party_size          INT          NOT NULL,
		diner_name          VARCHAR(255) NOT NULL,
		diner_email         VARCHAR(255) NOT NULL,
		diner_phone         VARCHAR(64)  NOT NULL,
		status              ENUM('PENDING','CONFIRMED','CANCELLED') NOT NULL,
		special_requests    VARCHAR(500) NULL,
		cancelled_by        VARCHAR(255) NULL,
		cancellation_reason VARCHAR(500) NULL,
		cancelled_at        DATETIME     NULL,
		created_at          DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at          DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		version             BIGINT UNSIGNED NOT NULL DEFAULT 0,
		active_slot_key     VARCHAR(100) GENERATED ALWAYS AS (
			CASE WHEN status IN ('PENDING','CONFIRMED')
			     THEN CONCAT(room_id, '|', reservation_date, '|', time_slot)
			END
		) STORED,
		PRIMARY KEY (id),
		UNIQUE KEY uk_room_date_slot_active (active_slot_key),
		KEY idx_reservations_room_date (room_id, reservation_date),
		KEY idx_reservations_diner_email (diner_email),
		KEY idx_reservations_restaurant (restaurant_id),
		CONSTRAINT fk_reservations_room FOREIGN KEY (room_id) REFERENCES rooms (id),
		CONSTRAINT fk_reservations_restaurant FOREIGN KEY (restaurant_id) REFERENCES restaurants (id),
		CONSTRAINT chk_reservations_party CHECK (party_size >= 1)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// EnsureSchema creates the tables and constraints the service depends on.
// Statements are idempotent so repeated startups are safe.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
