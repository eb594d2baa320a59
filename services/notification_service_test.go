package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel-ops/apperrors"
	"hotel-ops/models"
)

type recordingPusher struct {
	users []string
	err   error
}

func (p *recordingPusher) PushToUser(userID string, _ interface{}) error {
	p.users = append(p.users, userID)
	return p.err
}

type sentMail struct{ to, subject string }

type recordingMailer struct{ sent []sentMail }

func (m *recordingMailer) Send(to, subject, _ string) error {
	m.sent = append(m.sent, sentMail{to: to, subject: subject})
	return nil
}

func newNotificationFixture(t *testing.T) (*NotificationService, *UserService, *recordingPusher, *recordingMailer) {
	t.Helper()
	db := newTestDB(t)
	pusher := &recordingPusher{}
	mailer := &recordingMailer{}
	clock := newTestClock()
	return NewNotificationService(db, pusher, mailer, quietLogger(), clock.Now), NewUserService(db, quietLogger()), pusher, mailer
}

func TestNotificationService_CreateDelivers(t *testing.T) {
	notifications, users, pusher, mailer := newNotificationFixture(t)
	ctx := context.Background()
	user, err := users.CreateUser(ctx, UserInput{Email: "chef@lac.fr", Password: "secret1"})
	require.NoError(t, err)

	n := &models.Notification{UserID: user.ID, Title: "Info"}
	require.NoError(t, notifications.Create(ctx, n))
	assert.Equal(t, models.NotificationInfo, n.Type)
	assert.Equal(t, models.PriorityMedium, n.Priority)
	assert.Equal(t, []string{user.ID}, pusher.users)
	assert.Empty(t, mailer.sent)

	urgent := &models.Notification{UserID: user.ID, Title: "Fuite", Priority: models.PriorityUrgent}
	require.NoError(t, notifications.Create(ctx, urgent))
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, sentMail{to: "chef@lac.fr", subject: "Fuite"}, mailer.sent[0])

	err = notifications.Create(ctx, &models.Notification{Title: "no user"})
	assert.True(t, apperrors.Is(err, apperrors.CodeValidation))
}

func TestNotificationService_PushFailureIsNotFatal(t *testing.T) {
	notifications, _, pusher, _ := newNotificationFixture(t)
	pusher.err = errors.New("no session")

	require.NoError(t, notifications.Create(context.Background(), &models.Notification{UserID: "u1", Title: "Hello"}))
	count, err := notifications.UnreadCount(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestNotificationService_ReadLifecycle(t *testing.T) {
	notifications, _, _, _ := newNotificationFixture(t)
	ctx := context.Background()

	var ids []string
	for _, title := range []string{"A", "B", "C"} {
		n := &models.Notification{UserID: "u1", Title: title}
		require.NoError(t, notifications.Create(ctx, n))
		ids = append(ids, n.ID)
	}
	require.NoError(t, notifications.Create(ctx, &models.Notification{UserID: "u2", Title: "other"}))

	require.NoError(t, notifications.MarkAsRead(ctx, "u1", ids[0]))
	err := notifications.MarkAsRead(ctx, "u2", ids[1])
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))

	count, err := notifications.UnreadCount(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	unread, err := notifications.ListForUser(ctx, "u1", true, 0)
	require.NoError(t, err)
	assert.Len(t, unread, 2)

	deleted, err := notifications.DeleteRead(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	updated, err := notifications.MarkAllAsRead(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)

	require.NoError(t, notifications.Delete(ctx, "u1", ids[1]))
	err = notifications.Delete(ctx, "u1", ids[1])
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))

	all, err := notifications.ListForUser(ctx, "u1", false, 0)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, all[0].Read)
	assert.NotNil(t, all[0].ReadAt)

	others, err := notifications.UnreadCount(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, int64(1), others)
}

func TestNotificationService_NotifyEstablishmentRoles(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.addOwner(t, "owner@lac.fr")
	tech, err := env.app.Users.CreateUser(ctx, UserInput{Email: "tech@lac.fr", Password: "secret1"})
	require.NoError(t, err)
	_, err = env.app.Users.AddMember(ctx, env.est.ID, tech.ID, models.RoleTechnician)
	require.NoError(t, err)

	sent, err := env.app.Notifications.NotifyEstablishmentRoles(ctx, env.est.ID,
		[]string{models.RoleOwner, models.RoleManager}, models.Notification{Title: "Réunion"})
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	count, err := env.app.Notifications.UnreadCount(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	count, err = env.app.Notifications.UnreadCount(ctx, tech.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}
