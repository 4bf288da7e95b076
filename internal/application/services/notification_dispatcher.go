package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rohanthuse/infinite-care-vue-sub018/internal/domain/entities"
	"github.com/rohanthuse/infinite-care-vue-sub018/internal/domain/repositories"
)

const (
	lateStartTitle   = "Booking Not Started On Time"
	missedAdminTitle = "Missed Booking Alert"
	missedCarerTitle = "Booking Marked as Missed"

	clockLayout = "15:04"
	dateLayout  = "Mon 2 Jan 2006"
)

// AdminRecipientResolver resolves the administrators for a branch
type AdminRecipientResolver interface {
	AdminRecipients(ctx context.Context, branchID string) ([]string, error)
}

// NotificationDispatcher builds and stores the in-app alerts for lateness transitions
type NotificationDispatcher struct {
	repo       repositories.NotificationRepository
	recipients AdminRecipientResolver
	location   *time.Location
	newID      func() string
}

// NewNotificationDispatcher creates a dispatcher that renders times in location
func NewNotificationDispatcher(repo repositories.NotificationRepository, recipients AdminRecipientResolver, location *time.Location) *NotificationDispatcher {
	if location == nil {
		location = time.UTC
	}
	return &NotificationDispatcher{
		repo:       repo,
		recipients: recipients,
		location:   location,
		newID:      uuid.NewString,
	}
}

// DispatchLateStart notifies the branch's admins that a visit has not started.
// It returns the number of notifications stored.
func (d *NotificationDispatcher) DispatchLateStart(ctx context.Context, c *entities.BookingCandidate, minutesLate int, now time.Time) (int, error) {
	admins, err := d.recipients.AdminRecipients(ctx, c.BranchID)
	if err != nil {
		return 0, err
	}

	notifications := d.BuildLateStart(c, admins, minutesLate, now)
	return d.store(ctx, notifications)
}

// DispatchMissed notifies admins and, when they have a login, the assigned
// carer that a booking was marked missed.
func (d *NotificationDispatcher) DispatchMissed(ctx context.Context, c *entities.BookingCandidate, minutesLate int, now time.Time) (int, error) {
	admins, err := d.recipients.AdminRecipients(ctx, c.BranchID)
	if err != nil {
		return 0, err
	}

	notifications := d.BuildMissed(c, admins, minutesLate, now)
	return d.store(ctx, notifications)
}

// BuildLateStart renders one late-start notification per admin.
func (d *NotificationDispatcher) BuildLateStart(c *entities.BookingCandidate, admins []string, minutesLate int, now time.Time) []*entities.Notification {
	start := c.StartTime.In(d.location)
	message := fmt.Sprintf(
		"%s has not started the visit with %s scheduled for %s on %s. The visit is %s late.",
		c.CarerName(), c.Client.FullName(),
		start.Format(clockLayout), start.Format(dateLayout),
		formatMinutes(minutesLate),
	)

	data := d.data(c, entities.NotificationStatusNotStarted)
	data.MinutesLate = &minutesLate

	notifications := make([]*entities.Notification, 0, len(admins))
	for _, userID := range admins {
		notifications = append(notifications, d.notification(
			userID, c.BranchID, lateStartTitle, message,
			entities.NotificationLateStart, entities.PriorityHigh, data, now,
		))
	}
	return notifications
}

// BuildMissed renders the admin alerts plus the carer's own notice.
func (d *NotificationDispatcher) BuildMissed(c *entities.BookingCandidate, admins []string, minutesLate int, now time.Time) []*entities.Notification {
	start := c.StartTime.In(d.location)
	end := c.EndTime.In(d.location)
	window := fmt.Sprintf("%s-%s on %s", start.Format(clockLayout), end.Format(clockLayout), start.Format(dateLayout))

	adminMessage := fmt.Sprintf(
		"The visit for %s with %s scheduled %s was not started and has been marked as missed.",
		c.Client.FullName(), c.CarerName(), window,
	)
	adminData := d.data(c, entities.NotificationStatusMissed)
	adminData.MinutesLate = &minutesLate

	notifications := make([]*entities.Notification, 0, len(admins)+1)
	for _, userID := range admins {
		notifications = append(notifications, d.notification(
			userID, c.BranchID, missedAdminTitle, adminMessage,
			entities.NotificationMissedBooking, entities.PriorityCritical, adminData, now,
		))
	}

	if c.Staff != nil && c.Staff.AuthUserID != nil && *c.Staff.AuthUserID != "" {
		carerMessage := fmt.Sprintf(
			"Your visit with %s scheduled %s was not started before its end time and has been marked as missed. Please contact your branch office.",
			c.Client.FullName(), window,
		)
		notifications = append(notifications, d.notification(
			*c.Staff.AuthUserID, c.BranchID, missedCarerTitle, carerMessage,
			entities.NotificationMissedBooking, entities.PriorityHigh,
			d.data(c, entities.NotificationStatusMissed), now,
		))
	}

	return notifications
}

func (d *NotificationDispatcher) data(c *entities.BookingCandidate, status string) entities.NotificationData {
	return entities.NotificationData{
		BookingID:      c.ID,
		ClientName:     c.Client.FullName(),
		StaffName:      c.CarerName(),
		ServiceTitle:   c.ServiceTitle(),
		ScheduledStart: c.StartTime,
		ScheduledEnd:   c.EndTime,
		Status:         status,
	}
}

func (d *NotificationDispatcher) notification(
	userID, branchID, title, message string,
	typ entities.NotificationType,
	priority entities.NotificationPriority,
	data entities.NotificationData,
	now time.Time,
) *entities.Notification {
	return &entities.Notification{
		ID:        d.newID(),
		UserID:    userID,
		BranchID:  branchID,
		Title:     title,
		Message:   message,
		Type:      typ,
		Category:  entities.NotificationCategoryBooking,
		Priority:  priority,
		Data:      data,
		CreatedAt: now,
	}
}

func (d *NotificationDispatcher) store(ctx context.Context, notifications []*entities.Notification) (int, error) {
	if len(notifications) == 0 {
		return 0, nil
	}
	if err := d.repo.CreateBatch(ctx, notifications); err != nil {
		return 0, fmt.Errorf("failed to store %d notifications: %w", len(notifications), err)
	}
	return len(notifications), nil
}

func formatMinutes(minutes int) string {
	if minutes == 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", minutes)
}
