package engine

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"readMoreAPI/internal/types/challenge"
	"readMoreAPI/internal/types/streak"
)

// memStore is an in-memory TxStore. InTx snapshots nothing: engine tests only
// exercise the happy path, rollback behavior belongs to the pgx store.
type memStore struct {
	users       map[uuid.UUID]*streak.UserStreak
	ledger      map[string]*streak.DailyReading
	challenges  []*challenge.Challenge
	enrollments []*challenge.Enrollment
}

func newMemStore() *memStore {
	return &memStore{
		users:  make(map[uuid.UUID]*streak.UserStreak),
		ledger: make(map[string]*streak.DailyReading),
	}
}

func ledgerKey(userID uuid.UUID, day time.Time) string {
	return fmt.Sprintf("%s_%s", userID, day.Format("2006-01-02"))
}

func (m *memStore) InTx(_ context.Context, fn func(tx TxStore) error) error {
	return fn(m)
}

func (m *memStore) UserStreakForUpdate(_ context.Context, userID uuid.UUID) (*streak.UserStreak, error) {
	st, ok := m.users[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	return st, nil
}

func (m *memStore) SaveUserStreak(_ context.Context, st *streak.UserStreak) error {
	m.users[st.UserID] = st
	return nil
}

func (m *memStore) UpsertDailyReading(_ context.Context, userID uuid.UUID, day time.Time, readingSeconds, pageCount int) (bool, error) {
	key := ledgerKey(userID, day)
	if row, ok := m.ledger[key]; ok {
		row.ReadingSeconds += readingSeconds
		row.PageCount += pageCount
		return false, nil
	}
	m.ledger[key] = &streak.DailyReading{
		ID:             uuid.New(),
		UserID:         userID,
		ReadingDate:    day,
		ReadingSeconds: readingSeconds,
		PageCount:      pageCount,
	}
	return true, nil
}

func (m *memStore) CountQualifyingDays(_ context.Context, userID uuid.UUID, from, to time.Time) (int, error) {
	count := 0
	for _, row := range m.ledger {
		if row.UserID != userID || row.PageCount <= 0 {
			continue
		}
		if !row.ReadingDate.Before(from) && !row.ReadingDate.After(to) {
			count++
		}
	}
	return count, nil
}

func (m *memStore) ActiveEnrollments(_ context.Context, userID uuid.UUID) ([]*challenge.EnrollmentWithChallenge, error) {
	var out []*challenge.EnrollmentWithChallenge
	for _, enr := range m.enrollments {
		if enr.UserID != userID || enr.IsCompleted {
			continue
		}
		ch := m.challengeByID(enr.ChallengeID)
		if ch == nil {
			continue
		}
		out = append(out, &challenge.EnrollmentWithChallenge{Enrollment: *enr, Challenge: ch})
	}
	return out, nil
}

func (m *memStore) SaveEnrollment(_ context.Context, enr *challenge.Enrollment) error {
	for i, existing := range m.enrollments {
		if existing.ID == enr.ID {
			cp := *enr
			m.enrollments[i] = &cp
			return nil
		}
	}
	return fmt.Errorf("enrollment %s not found", enr.ID)
}

func (m *memStore) CreateEnrollment(_ context.Context, enr *challenge.Enrollment) error {
	cp := *enr
	m.enrollments = append(m.enrollments, &cp)
	return nil
}

func (m *memStore) HasEnrollment(_ context.Context, userID, challengeID uuid.UUID) (bool, error) {
	for _, enr := range m.enrollments {
		if enr.UserID == userID && enr.ChallengeID == challengeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) ChallengeByTypeAndTarget(_ context.Context, typ challenge.Type, target int) (*challenge.Challenge, error) {
	for _, ch := range m.challenges {
		if ch.Type == typ && ch.TargetValue == target {
			return ch, nil
		}
	}
	return nil, nil
}

func (m *memStore) challengeByID(id uuid.UUID) *challenge.Challenge {
	for _, ch := range m.challenges {
		if ch.ID == id {
			return ch
		}
	}
	return nil
}

func (m *memStore) addChallenge(typ challenge.Type, target int) *challenge.Challenge {
	ch := &challenge.Challenge{
		ID:          uuid.New(),
		Name:        fmt.Sprintf("%s-%d", typ, target),
		Type:        typ,
		TargetValue: target,
		IsActive:    true,
	}
	m.challenges = append(m.challenges, ch)
	return ch
}

func (m *memStore) addUser() uuid.UUID {
	id := uuid.New()
	m.users[id] = &streak.UserStreak{UserID: id}
	return id
}

func (m *memStore) enroll(userID, challengeID uuid.UUID) *challenge.Enrollment {
	enr := &challenge.Enrollment{
		ID:          uuid.New(),
		UserID:      userID,
		ChallengeID: challengeID,
	}
	m.enrollments = append(m.enrollments, enr)
	return enr
}

func (m *memStore) enrollmentFor(userID, challengeID uuid.UUID) *challenge.Enrollment {
	for _, enr := range m.enrollments {
		if enr.UserID == userID && enr.ChallengeID == challengeID {
			return enr
		}
	}
	return nil
}

// testClock walks through calendar days under test control.
type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) advanceDays(n int) { c.now = c.now.AddDate(0, 0, n) }

func newTestEngine(store *memStore) (*Engine, *testClock) {
	clock := &testClock{now: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)}
	return New(store, WithClock(clock.Now)), clock
}

func TestRecordReadingUnknownUser(t *testing.T) {
	store := newMemStore()
	eng, _ := newTestEngine(store)

	_, err := eng.RecordReading(context.Background(), uuid.New(), 60, 1)
	if err == nil {
		t.Fatal("expected error for unknown user")
	}
}

func TestRecordReadingRejectsNegativeAmounts(t *testing.T) {
	store := newMemStore()
	eng, _ := newTestEngine(store)
	userID := store.addUser()

	if _, err := eng.RecordReading(context.Background(), userID, -1, 0); err == nil {
		t.Fatal("expected error for negative seconds")
	}
	if _, err := eng.RecordReading(context.Background(), userID, 0, -1); err == nil {
		t.Fatal("expected error for negative pages")
	}
}

func TestSameDayEventsAccumulateWithoutDoubleAdvance(t *testing.T) {
	store := newMemStore()
	eng, clock := newTestEngine(store)
	userID := store.addUser()
	ctx := context.Background()

	res, err := eng.RecordReading(ctx, userID, 600, 5)
	if err != nil {
		t.Fatal(err)
	}
	if !res.CreatedLedgerRow {
		t.Error("first event of the day should create the ledger row")
	}
	if res.CurrentStreak != 1 {
		t.Errorf("current streak = %d, want 1", res.CurrentStreak)
	}

	res, err = eng.RecordReading(ctx, userID, 300, 3)
	if err != nil {
		t.Fatal(err)
	}
	if res.CreatedLedgerRow {
		t.Error("second event of the day must not create a ledger row")
	}
	if res.CurrentStreak != 1 {
		t.Errorf("current streak after same-day event = %d, want 1", res.CurrentStreak)
	}

	row := store.ledger[ledgerKey(userID, dateOnly(clock.now))]
	if row == nil {
		t.Fatal("ledger row missing")
	}
	if row.ReadingSeconds != 900 || row.PageCount != 8 {
		t.Errorf("ledger totals = (%d, %d), want (900, 8)", row.ReadingSeconds, row.PageCount)
	}
}

func TestContiguityRules(t *testing.T) {
	store := newMemStore()
	eng, clock := newTestEngine(store)
	userID := store.addUser()
	ctx := context.Background()

	// Day D.
	if _, err := eng.RecordReading(ctx, userID, 60, 1); err != nil {
		t.Fatal(err)
	}

	// Day D+1: contiguous, increments.
	clock.advanceDays(1)
	res, err := eng.RecordReading(ctx, userID, 60, 1)
	if err != nil {
		t.Fatal(err)
	}
	if res.CurrentStreak != 2 {
		t.Errorf("streak on D+1 = %d, want 2", res.CurrentStreak)
	}

	// Day D+3: a gap resets to 1, longest stays at 2.
	clock.advanceDays(2)
	res, err = eng.RecordReading(ctx, userID, 60, 1)
	if err != nil {
		t.Fatal(err)
	}
	if res.CurrentStreak != 1 {
		t.Errorf("streak after gap = %d, want 1", res.CurrentStreak)
	}
	if res.LongestStreak != 2 {
		t.Errorf("longest streak after gap = %d, want 2", res.LongestStreak)
	}
}

func TestLongestStreakMonotonic(t *testing.T) {
	store := newMemStore()
	eng, clock := newTestEngine(store)
	userID := store.addUser()
	ctx := context.Background()

	longest := 0
	// Read 4 days, skip one, read 2 more, skip two, read 3 more.
	pattern := []int{1, 1, 1, 1, 2, 1, 3, 1, 1}
	for _, gap := range pattern {
		res, err := eng.RecordReading(ctx, userID, 60, 1)
		if err != nil {
			t.Fatal(err)
		}
		if res.LongestStreak < longest {
			t.Fatalf("longest streak decreased: %d -> %d", longest, res.LongestStreak)
		}
		if res.LongestStreak < res.CurrentStreak {
			t.Fatalf("longest %d < current %d", res.LongestStreak, res.CurrentStreak)
		}
		longest = res.LongestStreak
		clock.advanceDays(gap)
	}
	if longest != 4 {
		t.Errorf("final longest streak = %d, want 4", longest)
	}
}

func TestMilestoneAwardedOnceAndCompleted(t *testing.T) {
	store := newMemStore()
	eng, clock := newTestEngine(store)
	userID := store.addUser()
	ch := store.addChallenge(challenge.TypeStreak, 3)
	ctx := context.Background()

	// Climb to 3.
	for i := 0; i < 3; i++ {
		if _, err := eng.RecordReading(ctx, userID, 60, 1); err != nil {
			t.Fatal(err)
		}
		clock.advanceDays(1)
	}

	enr := store.enrollmentFor(userID, ch.ID)
	if enr == nil {
		t.Fatal("milestone enrollment not created")
	}
	if !enr.IsCompleted || enr.Progress != 3 || enr.CompletedDate == nil {
		t.Errorf("milestone enrollment = %+v, want completed with progress 3", enr)
	}

	// Break the streak and climb back to 3: no second award.
	clock.advanceDays(2)
	for i := 0; i < 3; i++ {
		if _, err := eng.RecordReading(ctx, userID, 60, 1); err != nil {
			t.Fatal(err)
		}
		clock.advanceDays(1)
	}

	count := 0
	for _, e := range store.enrollments {
		if e.UserID == userID && e.ChallengeID == ch.ID {
			count++
		}
	}
	if count != 1 {
		t.Errorf("milestone awarded %d times, want 1", count)
	}
}

func TestMilestoneSkippedWhenCatalogMissing(t *testing.T) {
	store := newMemStore()
	eng, clock := newTestEngine(store)
	userID := store.addUser()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := eng.RecordReading(ctx, userID, 60, 1)
		if err != nil {
			t.Fatal(err)
		}
		if len(res.MilestonesAwarded) != 0 {
			t.Errorf("milestone awarded with empty catalog: %v", res.MilestonesAwarded)
		}
		clock.advanceDays(1)
	}
	if len(store.enrollments) != 0 {
		t.Errorf("expected no enrollments, got %d", len(store.enrollments))
	}
}

func TestStreakChallengeCompletesAtTarget(t *testing.T) {
	store := newMemStore()
	eng, clock := newTestEngine(store)
	userID := store.addUser()
	ch := store.addChallenge(challenge.TypeStreak, 5)
	store.enroll(userID, ch.ID)
	ctx := context.Background()

	for day := 1; day <= 5; day++ {
		res, err := eng.RecordReading(ctx, userID, 60, 1)
		if err != nil {
			t.Fatal(err)
		}
		enr := store.enrollmentFor(userID, ch.ID)
		if enr.Progress != day {
			t.Errorf("day %d: progress = %d, want %d", day, enr.Progress, day)
		}
		if day < 5 && enr.IsCompleted {
			t.Errorf("day %d: completed early", day)
		}
		if day == 5 {
			if !enr.IsCompleted {
				t.Error("not completed at target")
			}
			if len(res.CompletedChallenges) != 1 || res.CompletedChallenges[0] != ch.ID {
				t.Errorf("completed challenges = %v, want [%s]", res.CompletedChallenges, ch.ID)
			}
		}
		clock.advanceDays(1)
	}
}

func TestConsistencyWindow(t *testing.T) {
	store := newMemStore()
	eng, clock := newTestEngine(store)
	userID := store.addUser()
	ch := store.addChallenge(challenge.TypeConsistency, 14)
	store.enroll(userID, ch.ID)
	ctx := context.Background()

	// 13 days with pages, one day with a zero-page event in the middle.
	for day := 0; day < 14; day++ {
		pages := 2
		if day == 6 {
			pages = 0
		}
		if _, err := eng.RecordReading(ctx, userID, 120, pages); err != nil {
			t.Fatal(err)
		}
		if day < 13 {
			clock.advanceDays(1)
		}
	}

	enr := store.enrollmentFor(userID, ch.ID)
	if enr.Progress != 13 {
		t.Errorf("progress with one zero-page day = %d, want 13", enr.Progress)
	}
	if enr.IsCompleted {
		t.Error("completed despite a non-qualifying day in the window")
	}

	// Day 15: the zero-page day is still inside the trailing window, so the
	// count saturates only once it slides out. Days 15..20 push it out.
	for day := 0; day < 7; day++ {
		clock.advanceDays(1)
		if _, err := eng.RecordReading(ctx, userID, 120, 2); err != nil {
			t.Fatal(err)
		}
	}

	enr = store.enrollmentFor(userID, ch.ID)
	if enr.Progress != 14 {
		t.Errorf("progress after window filled = %d, want 14", enr.Progress)
	}
	if !enr.IsCompleted {
		t.Error("not completed after 14 qualifying days in the window")
	}
}

func TestCompletionIsSticky(t *testing.T) {
	store := newMemStore()
	eng, clock := newTestEngine(store)
	userID := store.addUser()
	ch := store.addChallenge(challenge.TypeStreak, 2)
	store.enroll(userID, ch.ID)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := eng.RecordReading(ctx, userID, 60, 1); err != nil {
			t.Fatal(err)
		}
		clock.advanceDays(1)
	}
	enr := store.enrollmentFor(userID, ch.ID)
	if !enr.IsCompleted {
		t.Fatal("challenge not completed at target")
	}
	completedAt := *enr.CompletedDate

	// Break the streak; the completed enrollment must not regress.
	clock.advanceDays(2)
	if _, err := eng.RecordReading(ctx, userID, 60, 1); err != nil {
		t.Fatal(err)
	}

	enr = store.enrollmentFor(userID, ch.ID)
	if !enr.IsCompleted {
		t.Error("completion reverted after streak break")
	}
	if !enr.CompletedDate.Equal(completedAt) {
		t.Error("completed date rewritten after completion")
	}
	if enr.Progress != 2 {
		t.Errorf("completed enrollment progress rewritten to %d", enr.Progress)
	}
}

func TestUnhandledChallengeTypesAreNoOps(t *testing.T) {
	store := newMemStore()
	eng, _ := newTestEngine(store)
	userID := store.addUser()
	ctx := context.Background()

	var enrs []*challenge.Enrollment
	for _, typ := range []challenge.Type{challenge.TypePages, challenge.TypeCompletion, challenge.TypeTime} {
		ch := store.addChallenge(typ, 100)
		enrs = append(enrs, store.enroll(userID, ch.ID))
	}

	if _, err := eng.RecordReading(ctx, userID, 600, 20); err != nil {
		t.Fatal(err)
	}

	for _, enr := range enrs {
		if enr.Progress != 0 || enr.IsCompleted {
			t.Errorf("enrollment %s advanced without a trigger: %+v", enr.ID, enr)
		}
	}
}

func TestEndToEndThreeDayMilestone(t *testing.T) {
	store := newMemStore()
	eng, clock := newTestEngine(store)
	userID := store.addUser()
	ch := store.addChallenge(challenge.TypeStreak, 3)
	ctx := context.Background()

	want := []int{1, 2, 3}
	for i, expected := range want {
		res, err := eng.RecordReading(ctx, userID, 300, 5)
		if err != nil {
			t.Fatal(err)
		}
		if res.CurrentStreak != expected {
			t.Errorf("day %d: streak = %d, want %d", i+1, res.CurrentStreak, expected)
		}
		if i == 2 {
			if len(res.MilestonesAwarded) != 1 || res.MilestonesAwarded[0] != 3 {
				t.Errorf("day 3: milestones = %v, want [3]", res.MilestonesAwarded)
			}
		}
		clock.advanceDays(1)
	}

	enr := store.enrollmentFor(userID, ch.ID)
	if enr == nil || !enr.IsCompleted || enr.Progress != 3 {
		t.Errorf("milestone enrollment = %+v, want auto-completed at 3", enr)
	}
}
