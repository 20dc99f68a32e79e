package assistantRepository

const (
	queryCreateReminder = `
		INSERT INTO reminders (
			id,
			user_id,
			task,
			remind_at,
			recurrence,
			status,
			event_link,
			created_at,
			updated_at
		) VALUES (
			:id,
			:user_id,
			:task,
			:remind_at,
			:recurrence,
			:status,
			:event_link,
			:created_at,
			:updated_at
		)
	`

	queryGetReminderByID = `
		SELECT
			id,
			user_id,
			task,
			remind_at,
			recurrence,
			status,
			event_link,
			created_at,
			updated_at
		FROM reminders
		WHERE id = :id
	`

	queryListUpcomingByUser = `
		SELECT
			id,
			user_id,
			task,
			remind_at,
			recurrence,
			status,
			event_link,
			created_at,
			updated_at
		FROM reminders
		WHERE user_id = :user_id
			AND status = 'pending'
			AND remind_at >= :from
		ORDER BY remind_at ASC
		LIMIT 20
	`

	queryListPending = `
		SELECT
			id,
			user_id,
			task,
			remind_at,
			recurrence,
			status,
			event_link,
			created_at,
			updated_at
		FROM reminders
		WHERE status = 'pending'
		ORDER BY remind_at ASC
	`

	queryReschedule = `
		UPDATE reminders
		SET remind_at = :remind_at,
			status = 'pending',
			updated_at = :updated_at
		WHERE id = :id
	`

	queryUpdateStatus = `
		UPDATE reminders
		SET status = :status,
			updated_at = :updated_at
		WHERE id = :id
	`

	querySetEventLink = `
		UPDATE reminders
		SET event_link = :event_link,
			updated_at = :updated_at
		WHERE id = :id
	`
)
