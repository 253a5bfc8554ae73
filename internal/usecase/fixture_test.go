package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/tournament-engine/internal/domain/blinds"
	"github.com/riskibarqy/tournament-engine/internal/domain/tournament"
	"github.com/riskibarqy/tournament-engine/internal/infrastructure/repository/memory"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = at
}

type sequenceIDs struct {
	mu sync.Mutex
	n  int
}

func (g *sequenceIDs) NewID() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("id-%04d", g.n), nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []tournament.Event
}

func (p *recordingPublisher) Publish(_ context.Context, events ...tournament.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
}

func (p *recordingPublisher) Types() []tournament.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]tournament.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

func (p *recordingPublisher) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}

var fixtureStart = time.Date(2026, time.March, 6, 19, 0, 0, 0, time.UTC)

type fixture struct {
	t           *testing.T
	clock       *fakeClock
	repo        *memory.TournamentRepository
	publisher   *recordingPublisher
	tournaments *TournamentService
	clocks      *ClockService
	ledger      *LedgerService
	tables      *TableService
	boards      *LeaderboardService
	maxRebuys   int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	clock := &fakeClock{now: fixtureStart}
	repo := memory.NewTournamentRepository()
	seasons := memory.NewSeasonRepository(memory.SeedSeasons())
	publisher := &recordingPublisher{}
	ids := &sequenceIDs{}

	f := &fixture{
		t:           t,
		clock:       clock,
		repo:        repo,
		publisher:   publisher,
		tournaments: NewTournamentService(repo, seasons, publisher, ids, nil, 0),
		clocks:      NewClockService(repo, seasons, publisher, ids, nil),
		ledger:      NewLedgerService(repo, seasons, publisher, ids, nil),
		tables:      NewTableService(repo, seasons, publisher, ids, nil, 0),
		boards:      NewLeaderboardService(repo, seasons, ids, nil),
	}
	f.tournaments.now = clock.Now
	f.clocks.now = clock.Now
	f.ledger.now = clock.Now
	f.tables.now = clock.Now
	f.boards.now = clock.Now
	return f
}

// flatSchedule has twenty-minute playing levels and no breaks.
func flatSchedule(levels int) blinds.Schedule {
	out := make(blinds.Schedule, 0, levels)
	sb := int64(25)
	for i := 1; i <= levels; i++ {
		out = append(out, blinds.Level{Number: i, SmallBlind: sb, BigBlind: 2 * sb, DurationMinutes: 20})
		sb *= 2
	}
	return out
}

// graceSchedule puts a break at level 7, right after rebuys end at level 6.
func graceSchedule() blinds.Schedule {
	out := flatSchedule(10)
	out[6] = blinds.Level{Number: 7, IsBreak: true, DurationMinutes: 20}
	return out
}

func intPtr(v int) *int { return &v }

// startTournament creates, enrolls and starts a tournament and runs its timer from fixtureStart.
func (f *fixture) startTournament(players int, schedule blinds.Schedule, rebuyEnd *int) tournament.Tournament {
	f.t.Helper()
	ctx := context.Background()

	item, err := f.tournaments.CreateTournament(ctx, CreateTournamentInput{
		Name:          "Friday deepstack",
		SeasonID:      memory.SeasonIDDefault,
		OwnerID:       "director-1",
		Schedule:      schedule,
		RebuyEndLevel: rebuyEnd,
		MaxRebuys:     f.maxRebuys,
		BuyIn:         2000,
		RebuyPrice:    2000,
	})
	if err != nil {
		f.t.Fatalf("create tournament: %v", err)
	}
	for i := 1; i <= players; i++ {
		if _, err := f.tournaments.EnrollPlayer(ctx, EnrollPlayerInput{
			TournamentID: item.ID,
			PlayerID:     playerID(i),
			DisplayName:  fmt.Sprintf("Player %d", i),
		}); err != nil {
			f.t.Fatalf("enroll player %d: %v", i, err)
		}
	}
	if _, err := f.tournaments.StartTournament(ctx, item.ID); err != nil {
		f.t.Fatalf("start tournament: %v", err)
	}
	if _, err := f.clocks.StartTimer(ctx, item.ID); err != nil {
		f.t.Fatalf("start timer: %v", err)
	}
	f.publisher.Reset()
	return item
}

// atLevel moves the clock one minute into level of a twenty-minute-per-level schedule and
// restarts the timer when a bust paused it.
func (f *fixture) atLevel(tournamentID string, level int) {
	f.t.Helper()
	ctx := context.Background()

	state, err := f.clocks.GetClock(ctx, tournamentID)
	if err != nil {
		f.t.Fatalf("get clock: %v", err)
	}
	target := int64((level-1)*20*60 + 60)
	if !state.Running {
		if _, err := f.clocks.ResumeTimer(ctx, tournamentID); err != nil {
			f.t.Fatalf("resume timer: %v", err)
		}
	}
	f.clock.Set(f.clock.Now().Add(time.Duration(target-state.ElapsedSeconds) * time.Second))

	state, err = f.clocks.GetClock(ctx, tournamentID)
	if err != nil {
		f.t.Fatalf("get clock: %v", err)
	}
	if state.Position.Number() != level {
		f.t.Fatalf("clock not at level %d: got=%d", level, state.Position.Number())
	}
}

func (f *fixture) player(tournamentID, id string) tournament.Player {
	f.t.Helper()
	players, err := f.repo.ListPlayers(context.Background(), tournamentID)
	if err != nil {
		f.t.Fatalf("list players: %v", err)
	}
	for _, p := range players {
		if p.PlayerID == id {
			return p
		}
	}
	f.t.Fatalf("player %s not found", id)
	return tournament.Player{}
}

func (f *fixture) eliminate(tournamentID, eliminated, eliminator string) EliminationResult {
	f.t.Helper()
	out, err := f.ledger.RecordElimination(context.Background(), RecordEliminationInput{
		TournamentID:       tournamentID,
		EliminatedPlayerID: eliminated,
		EliminatorPlayerID: eliminator,
	})
	if err != nil {
		f.t.Fatalf("eliminate %s by %s: %v", eliminated, eliminator, err)
	}
	return out
}

func playerID(i int) string {
	return fmt.Sprintf("p%02d", i)
}
