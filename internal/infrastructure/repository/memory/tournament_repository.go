package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/riskibarqy/tournament-engine/internal/domain/tournament"
)

type tournamentState struct {
	tournaments  map[string]tournament.Tournament
	orders       []string
	players      map[string][]tournament.Player
	busts        map[string]tournament.Bust
	bustOrders   map[string][]string
	eliminations map[string][]tournament.Elimination
	assignments  map[string][]tournament.TableAssignment
}

func newTournamentState() *tournamentState {
	return &tournamentState{
		tournaments:  make(map[string]tournament.Tournament),
		players:      make(map[string][]tournament.Player),
		busts:        make(map[string]tournament.Bust),
		bustOrders:   make(map[string][]string),
		eliminations: make(map[string][]tournament.Elimination),
		assignments:  make(map[string][]tournament.TableAssignment),
	}
}

// clone copies every container. Row structs are values; their pointer fields are only ever
// replaced, never written through, so sharing them is safe.
func (s *tournamentState) clone() *tournamentState {
	out := &tournamentState{
		tournaments:  make(map[string]tournament.Tournament, len(s.tournaments)),
		orders:       append([]string(nil), s.orders...),
		players:      make(map[string][]tournament.Player, len(s.players)),
		busts:        make(map[string]tournament.Bust, len(s.busts)),
		bustOrders:   make(map[string][]string, len(s.bustOrders)),
		eliminations: make(map[string][]tournament.Elimination, len(s.eliminations)),
		assignments:  make(map[string][]tournament.TableAssignment, len(s.assignments)),
	}
	for k, v := range s.tournaments {
		out.tournaments[k] = v
	}
	for k, v := range s.players {
		out.players[k] = append([]tournament.Player(nil), v...)
	}
	for k, v := range s.busts {
		out.busts[k] = v
	}
	for k, v := range s.bustOrders {
		out.bustOrders[k] = append([]string(nil), v...)
	}
	for k, v := range s.eliminations {
		out.eliminations[k] = append([]tournament.Elimination(nil), v...)
	}
	for k, v := range s.assignments {
		out.assignments[k] = append([]tournament.TableAssignment(nil), v...)
	}
	return out
}

// TournamentRepository keeps tournaments in process. One mutex is held for the whole of a
// transaction, which runs against a clone swapped in on commit.
type TournamentRepository struct {
	mu    sync.RWMutex
	state *tournamentState
}

func NewTournamentRepository() *TournamentRepository {
	return &TournamentRepository{state: newTournamentState()}
}

func (r *TournamentRepository) CreateTournament(_ context.Context, t tournament.Tournament) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.state.tournaments[t.ID]; exists {
		return fmt.Errorf("%w: tournament %s already exists", tournament.ErrConcurrentModification, t.ID)
	}
	r.state.tournaments[t.ID] = t
	r.state.orders = append(r.state.orders, t.ID)
	return nil
}

func (r *TournamentRepository) GetTournament(_ context.Context, tournamentID string) (tournament.Tournament, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.state.tournaments[tournamentID]
	return t, ok, nil
}

func (r *TournamentRepository) ListTournaments(_ context.Context) ([]tournament.Tournament, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]tournament.Tournament, 0, len(r.state.orders))
	for _, id := range r.state.orders {
		out = append(out, r.state.tournaments[id])
	}
	return out, nil
}

func (r *TournamentRepository) ListPlayers(_ context.Context, tournamentID string) ([]tournament.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.state.listPlayers(tournamentID), nil
}

func (r *TournamentRepository) ListEliminations(_ context.Context, tournamentID string) ([]tournament.Elimination, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]tournament.Elimination(nil), r.state.eliminations[tournamentID]...), nil
}

func (r *TournamentRepository) ListBusts(_ context.Context, tournamentID string) ([]tournament.Bust, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.state.listBusts(tournamentID), nil
}

func (r *TournamentRepository) ListActiveAssignments(_ context.Context, tournamentID string) ([]tournament.TableAssignment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.state.activeAssignments(tournamentID), nil
}

func (r *TournamentRepository) WithinTx(ctx context.Context, fn func(ctx context.Context, tx tournament.Tx) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	tx := &tournamentTx{state: r.state.clone()}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	r.state = tx.state
	return nil
}

type tournamentTx struct {
	state *tournamentState
}

func (tx *tournamentTx) LockTournament(_ context.Context, tournamentID string) (tournament.Tournament, bool, error) {
	t, ok := tx.state.tournaments[tournamentID]
	return t, ok, nil
}

func (tx *tournamentTx) UpdateTournament(_ context.Context, t tournament.Tournament) error {
	stored, ok := tx.state.tournaments[t.ID]
	if !ok || stored.Version != t.Version {
		return fmt.Errorf("%w: tournament %s", tournament.ErrConcurrentModification, t.ID)
	}
	t.Version++
	tx.state.tournaments[t.ID] = t
	return nil
}

func (tx *tournamentTx) ListPlayers(_ context.Context, tournamentID string) ([]tournament.Player, error) {
	return tx.state.listPlayers(tournamentID), nil
}

func (tx *tournamentTx) InsertPlayer(_ context.Context, p tournament.Player) error {
	for _, existing := range tx.state.players[p.TournamentID] {
		if existing.PlayerID == p.PlayerID {
			return fmt.Errorf("%w: player %s already enrolled", tournament.ErrConcurrentModification, p.PlayerID)
		}
	}
	tx.state.players[p.TournamentID] = append(tx.state.players[p.TournamentID], p)
	return nil
}

func (tx *tournamentTx) UpdatePlayer(_ context.Context, p tournament.Player) error {
	rows := tx.state.players[p.TournamentID]
	idx := -1
	for i, existing := range rows {
		if existing.ID == p.ID {
			idx = i
			continue
		}
		if p.FinalRank != nil && existing.FinalRank != nil && *existing.FinalRank == *p.FinalRank {
			return fmt.Errorf("%w: final rank %d already assigned", tournament.ErrConcurrentModification, *p.FinalRank)
		}
	}
	if idx < 0 || rows[idx].Version != p.Version {
		return fmt.Errorf("%w: player %s", tournament.ErrConcurrentModification, p.PlayerID)
	}
	p.Version++
	rows[idx] = p
	return nil
}

func (tx *tournamentTx) GetBust(_ context.Context, bustID string) (tournament.Bust, bool, error) {
	b, ok := tx.state.busts[bustID]
	return b, ok, nil
}

func (tx *tournamentTx) ListBusts(_ context.Context, tournamentID string) ([]tournament.Bust, error) {
	return tx.state.listBusts(tournamentID), nil
}

func (tx *tournamentTx) InsertBust(_ context.Context, b tournament.Bust) error {
	if _, exists := tx.state.busts[b.ID]; exists {
		return fmt.Errorf("%w: bust %s already exists", tournament.ErrConcurrentModification, b.ID)
	}
	tx.state.busts[b.ID] = b
	tx.state.bustOrders[b.TournamentID] = append(tx.state.bustOrders[b.TournamentID], b.ID)
	return nil
}

func (tx *tournamentTx) UpdateBust(_ context.Context, b tournament.Bust) error {
	if _, exists := tx.state.busts[b.ID]; !exists {
		return fmt.Errorf("%w: bust %s", tournament.ErrConcurrentModification, b.ID)
	}
	tx.state.busts[b.ID] = b
	return nil
}

func (tx *tournamentTx) InsertElimination(_ context.Context, e tournament.Elimination) error {
	for _, existing := range tx.state.eliminations[e.TournamentID] {
		if existing.EliminatedPlayerID == e.EliminatedPlayerID {
			return fmt.Errorf("%w: player %s already eliminated", tournament.ErrConcurrentModification, e.EliminatedPlayerID)
		}
	}
	tx.state.eliminations[e.TournamentID] = append(tx.state.eliminations[e.TournamentID], e)
	return nil
}

func (tx *tournamentTx) ListActiveAssignments(_ context.Context, tournamentID string) ([]tournament.TableAssignment, error) {
	return tx.state.activeAssignments(tournamentID), nil
}

func (tx *tournamentTx) ReplaceAssignments(_ context.Context, tournamentID string, next []tournament.TableAssignment) error {
	rows := tx.state.assignments[tournamentID]
	for i := range rows {
		rows[i].IsActive = false
	}
	seen := make(map[string]struct{}, len(next))
	for _, a := range next {
		if _, dup := seen[a.PlayerID]; dup {
			return fmt.Errorf("%w: player %s seated twice", tournament.ErrConcurrentModification, a.PlayerID)
		}
		seen[a.PlayerID] = struct{}{}
		a.IsActive = true
		rows = append(rows, a)
	}
	tx.state.assignments[tournamentID] = rows
	return nil
}

func (s *tournamentState) listPlayers(tournamentID string) []tournament.Player {
	out := append([]tournament.Player(nil), s.players[tournamentID]...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].EnrollmentOrder < out[j].EnrollmentOrder
	})
	return out
}

func (s *tournamentState) listBusts(tournamentID string) []tournament.Bust {
	ids := s.bustOrders[tournamentID]
	out := make([]tournament.Bust, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.busts[id])
	}
	return out
}

func (s *tournamentState) activeAssignments(tournamentID string) []tournament.TableAssignment {
	out := make([]tournament.TableAssignment, 0)
	for _, a := range s.assignments[tournamentID] {
		if a.IsActive {
			out = append(out, a)
		}
	}
	return out
}
