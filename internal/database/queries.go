package database

const (
	// Profile queries
	queryGetProfile = `
		SELECT user_id, current_energy, total_earned, current_streak, longest_streak,
		       last_report_date, active_guardian_id, version, created_at, updated_at
		FROM profiles
		WHERE user_id = ?`

	queryInsertProfile = `
		INSERT OR IGNORE INTO profiles (user_id) VALUES (?)`

	queryListUserIds = `
		SELECT user_id FROM profiles ORDER BY user_id`

	queryUpdateProfile = `
		UPDATE profiles
		SET current_energy = ?, total_earned = ?, current_streak = ?, longest_streak = ?,
		    last_report_date = ?, active_guardian_id = ?, version = version + 1,
		    updated_at = CURRENT_TIMESTAMP
		WHERE user_id = ? AND version = ?`

	// Guardian instance queries
	queryGetInstances = `
		SELECT guardian_id, unlocked, invested_energy, created_at, updated_at
		FROM guardian_instances
		WHERE user_id = ?
		ORDER BY guardian_id`

	queryUpsertInstance = `
		INSERT INTO guardian_instances (user_id, guardian_id, unlocked, invested_energy)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id, guardian_id) DO UPDATE SET
		  unlocked = excluded.unlocked,
		  invested_energy = excluded.invested_energy,
		  updated_at = CURRENT_TIMESTAMP`

	// Guardian memory queries (append-only)
	queryGetMemories = `
		SELECT id, guardian_id, from_stage, to_stage, invested_at_transition, created_at
		FROM guardian_memories
		WHERE user_id = ?
		ORDER BY created_at, to_stage`

	queryInsertMemory = `
		INSERT INTO guardian_memories (id, user_id, guardian_id, from_stage, to_stage, invested_at_transition, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	// Energy history queries, keyed "{userId}_{date}" for idempotent upserts
	queryUpsertHistory = `
		INSERT INTO energy_history (id, user_id, date, daily_report, streak_bonus,
		                            performance_bonus, weekly_bonus, total_earned, streak_day)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		  daily_report = excluded.daily_report,
		  streak_bonus = excluded.streak_bonus,
		  performance_bonus = excluded.performance_bonus,
		  weekly_bonus = excluded.weekly_bonus,
		  total_earned = excluded.total_earned,
		  streak_day = excluded.streak_day,
		  updated_at = CURRENT_TIMESTAMP`

	queryGetHistory = `
		SELECT id, user_id, date, daily_report, streak_bonus, performance_bonus,
		       weekly_bonus, total_earned, streak_day, created_at, updated_at
		FROM energy_history
		WHERE id = ?`

	queryHistoryRange = `
		SELECT id, user_id, date, daily_report, streak_bonus, performance_bonus,
		       weekly_bonus, total_earned, streak_day, created_at, updated_at
		FROM energy_history
		WHERE user_id = ? AND date >= ? AND date <= ?
		ORDER BY date`

	queryRecentHistory = `
		SELECT id, user_id, date, daily_report, streak_bonus, performance_bonus,
		       weekly_bonus, total_earned, streak_day, created_at, updated_at
		FROM energy_history
		WHERE user_id = ? AND date < ?
		ORDER BY date DESC
		LIMIT ?`

	querySumHistory = `
		SELECT COALESCE(SUM(total_earned), 0)
		FROM energy_history
		WHERE user_id = ?`

	// Report queries, keyed "{userId}_{date}" like history rows
	queryUpsertReport = `
		INSERT INTO reports (id, user_id, date, views, likes, replies, new_followers, post_count, modification_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0)
		ON CONFLICT(id) DO UPDATE SET
		  views = excluded.views,
		  likes = excluded.likes,
		  replies = excluded.replies,
		  new_followers = excluded.new_followers,
		  post_count = excluded.post_count,
		  modification_count = reports.modification_count + ?,
		  updated_at = CURRENT_TIMESTAMP`

	queryRecentReports = `
		SELECT user_id, date, views, likes, replies, new_followers, post_count,
		       modification_count, created_at, updated_at
		FROM reports
		WHERE user_id = ?
		ORDER BY date DESC
		LIMIT ?`

	// Audit trail of every profile mutation
	queryInsertAudit = `
		INSERT INTO energy_transactions (id, user_id, type, amount, energy_before, energy_after, guardian_id, reference)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
)
