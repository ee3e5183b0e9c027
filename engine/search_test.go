package engine_test

import (
	"context"
	"testing"

	"chess-engine/dragontooth"
	"chess-engine/engine"
)

func TestStartposDepthOneVisitsEveryMoveOnce(t *testing.T) {
	eng := engine.New(engine.Config{})
	result, err := eng.FindBestMove(context.Background(), dragontooth.NewStartingBoard(), engine.Limits{Depth: 1})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if result.Depth != 1 {
		t.Fatalf("expected depth 1, got %d", result.Depth)
	}
	if result.Nodes != 20 {
		t.Fatalf("expected exactly 20 nodes for the 20 replies, got %d", result.Nodes)
	}
	if result.Move == (engine.Move{}) {
		t.Fatalf("expected a move")
	}
}

func TestFindsMateInOne(t *testing.T) {
	eng := engine.New(engine.Config{})
	board := mustBoard(t, "6k1/5ppp/8/8/8/8/5PPP/4R1K1 w - - 0 1")

	result, err := eng.FindBestMove(context.Background(), board, engine.Limits{Depth: 4})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if got := result.Move.String(); got != "e1e8" {
		t.Fatalf("expected back rank mate e1e8, got %s", got)
	}
	if result.Score != engine.MaxScore-1 {
		t.Fatalf("expected mate score %d, got %d", engine.MaxScore-1, result.Score)
	}
	if engine.ScoreString(result.Score) != "mate 1" {
		t.Fatalf("expected mate 1, got %s", engine.ScoreString(result.Score))
	}
	// A proven mate stops the deepening.
	if result.Depth != 1 {
		t.Fatalf("expected search to stop at depth 1, got %d", result.Depth)
	}
}

func TestFindsMateInTwo(t *testing.T) {
	eng := engine.New(engine.Config{})
	board := mustBoard(t, "7k/8/1R6/R7/8/8/8/7K w - - 0 1")

	result, err := eng.FindBestMove(context.Background(), board, engine.Limits{Depth: 6})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if result.Score != engine.MaxScore-3 {
		t.Fatalf("expected mate in 3 plies worth %d, got %d", engine.MaxScore-3, result.Score)
	}
	if mv := result.Move.String(); mv != "a5a7" && mv != "b6b7" {
		t.Fatalf("expected a rook ladder move, got %s", mv)
	}
	if engine.ScoreString(result.Score) != "mate 2" {
		t.Fatalf("expected mate 2, got %s", engine.ScoreString(result.Score))
	}
	if result.Depth != 3 {
		t.Fatalf("expected the mate proven at depth 3, got %d", result.Depth)
	}
}

// The pruned search must agree with a plain unpruned negamax on every
// position, whatever the transposition table picked up on the way.
func TestSearchMatchesPlainNegamax(t *testing.T) {
	cases := []struct {
		fen   string
		depth int
	}{
		{"8/2k5/8/8/3P4/8/2K5/8 w - - 0 1", 3},
		{"8/8/4k3/8/2B5/2K5/8/8 w - - 0 1", 3},
		{"4k3/4p3/8/8/8/8/4P3/4K3 w - - 0 1", 3},
		{"k7/8/8/3q4/8/8/3R4/K7 w - - 0 1", 3},
		{"8/8/8/3pP3/8/8/8/k6K w - d6 0 2", 3},
	}
	for _, c := range cases {
		board := mustBoard(t, c.fen)
		want := plainNegamax(board, c.depth, 0)

		eng := engine.New(engine.Config{})
		result, err := eng.FindBestMove(context.Background(), board, engine.Limits{Depth: c.depth})
		if err != nil {
			t.Fatalf("fen %q: search: %v", c.fen, err)
		}
		if result.Score != want {
			t.Fatalf("fen %q: pruned search found %d, plain negamax %d", c.fen, result.Score, want)
		}

		// A warm transposition table may reorder everything but must
		// never change the answer.
		warm, err := eng.FindBestMove(context.Background(), board, engine.Limits{Depth: c.depth})
		if err != nil {
			t.Fatalf("fen %q: warm search: %v", c.fen, err)
		}
		if warm.Score != want {
			t.Fatalf("fen %q: warm search drifted to %d, want %d", c.fen, warm.Score, want)
		}
	}
}

func TestResetRestoresColdBehavior(t *testing.T) {
	fen := "r1bqkbnr/pppp1ppp/2n5/4p3/2B1P3/5N2/PPPP1PPP/RNBQK2R w KQkq - 4 4"
	limits := engine.Limits{Depth: 4}

	eng := engine.New(engine.Config{})
	cold, err := eng.FindBestMove(context.Background(), mustBoard(t, fen), limits)
	if err != nil {
		t.Fatalf("cold search: %v", err)
	}

	// Warm the tables, then reset and search again.
	if _, err := eng.FindBestMove(context.Background(), mustBoard(t, fen), limits); err != nil {
		t.Fatalf("warm search: %v", err)
	}
	eng.Reset()
	again, err := eng.FindBestMove(context.Background(), mustBoard(t, fen), limits)
	if err != nil {
		t.Fatalf("reset search: %v", err)
	}

	if again.Move != cold.Move || again.Score != cold.Score || again.Nodes != cold.Nodes {
		t.Fatalf("reset search diverged: cold %s/%d/%d, reset %s/%d/%d",
			cold.Move, cold.Score, cold.Nodes, again.Move, again.Score, again.Nodes)
	}
	if again.PV.String() != cold.PV.String() {
		t.Fatalf("reset pv diverged: %q vs %q", cold.PV.String(), again.PV.String())
	}
}

func TestZeroBudgetStillCompletesDepthOne(t *testing.T) {
	eng := engine.New(engine.Config{})
	result, err := eng.FindBestMove(context.Background(), dragontooth.NewStartingBoard(),
		engine.Limits{Depth: 5, MoveTime: 0, Timed: true})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if result.Depth != 1 {
		t.Fatalf("expected only depth 1 on an exhausted clock, got %d", result.Depth)
	}
	if result.Nodes != 20 {
		t.Fatalf("expected the depth 1 iteration only, got %d nodes", result.Nodes)
	}

	reference, err := engine.New(engine.Config{}).FindBestMove(context.Background(),
		dragontooth.NewStartingBoard(), engine.Limits{Depth: 1})
	if err != nil {
		t.Fatalf("reference search: %v", err)
	}
	if result.Move != reference.Move {
		t.Fatalf("zero budget move %s differs from depth 1 move %s", result.Move, reference.Move)
	}
}

func TestCanceledContextStopsAfterDepthOne(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	eng := engine.New(engine.Config{})
	board := mustBoard(t, "r1bqkbnr/pppp1ppp/2n5/4p3/2B1P3/5N2/PPPP1PPP/RNBQK2R w KQkq - 4 4")
	result, err := eng.FindBestMove(ctx, board, engine.Limits{Depth: 30})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if result.Depth != 1 {
		t.Fatalf("expected the canceled search to keep only depth 1, got %d", result.Depth)
	}
	if result.Move == (engine.Move{}) {
		t.Fatalf("expected a move even under cancellation")
	}
}

func TestCheckmateRootIsTerminal(t *testing.T) {
	eng := engine.New(engine.Config{})
	board := mustBoard(t, "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3")

	result, err := eng.FindBestMove(context.Background(), board, engine.Limits{Depth: 3})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if !result.Terminal || !result.Mate {
		t.Fatalf("expected a mated terminal root, got %+v", result)
	}
	if result.Score != -engine.MaxScore {
		t.Fatalf("expected score %d, got %d", -engine.MaxScore, result.Score)
	}
}

func TestStalemateRootIsTerminalDraw(t *testing.T) {
	eng := engine.New(engine.Config{})
	board := mustBoard(t, "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")

	result, err := eng.FindBestMove(context.Background(), board, engine.Limits{Depth: 3})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if !result.Terminal || result.Mate {
		t.Fatalf("expected a stalemate terminal root, got %+v", result)
	}
	if result.Score != engine.DrawScore {
		t.Fatalf("expected draw score, got %d", result.Score)
	}
}

func TestInfoCallbackSeesEveryDepth(t *testing.T) {
	var infos []engine.Info
	eng := engine.New(engine.Config{Info: func(info engine.Info) {
		infos = append(infos, info)
	}})
	board := mustBoard(t, "r1bqkbnr/pppp1ppp/2n5/4p3/2B1P3/5N2/PPPP1PPP/RNBQK2R w KQkq - 4 4")

	result, err := eng.FindBestMove(context.Background(), board, engine.Limits{Depth: 3})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(infos) != 3 {
		t.Fatalf("expected 3 progress reports, got %d", len(infos))
	}
	for i, info := range infos {
		if info.Depth != i+1 {
			t.Fatalf("report %d carries depth %d", i, info.Depth)
		}
	}
	last := infos[len(infos)-1]
	if last.Score != result.Score {
		t.Fatalf("final report score %d differs from result %d", last.Score, result.Score)
	}
	if last.PV.GetPVMove() != result.Move {
		t.Fatalf("final report pv starts with %s, result move is %s", last.PV.GetPVMove(), result.Move)
	}
	if len(result.PV.Moves) == 0 || result.PV.Moves[0] != result.Move {
		t.Fatalf("result pv %q does not start with the chosen move %s", result.PV.String(), result.Move)
	}
}

func TestNilPositionIsAnError(t *testing.T) {
	eng := engine.New(engine.Config{})
	if _, err := eng.FindBestMove(context.Background(), nil, engine.Limits{Depth: 1}); err != engine.ErrNoPosition {
		t.Fatalf("expected ErrNoPosition, got %v", err)
	}
}

func TestConfigNormalization(t *testing.T) {
	cfg := engine.New(engine.Config{}).Config()
	if cfg.Depth != engine.DefaultDepth {
		t.Fatalf("expected default depth %d, got %d", engine.DefaultDepth, cfg.Depth)
	}
	if cfg.MoveTime != engine.DefaultMoveTime {
		t.Fatalf("expected default move time %v, got %v", engine.DefaultMoveTime, cfg.MoveTime)
	}
	if cfg.TableSize != engine.DefaultTableSizeMB {
		t.Fatalf("expected default table size %d, got %d", engine.DefaultTableSizeMB, cfg.TableSize)
	}

	clamped := engine.New(engine.Config{Depth: 2000, TableSize: -3}).Config()
	if clamped.Depth != engine.MaxDepth {
		t.Fatalf("expected depth clamped to %d, got %d", engine.MaxDepth, clamped.Depth)
	}
	if clamped.TableSize != engine.DefaultTableSizeMB {
		t.Fatalf("expected table size fallback, got %d", clamped.TableSize)
	}
}

// plainNegamax is the oracle: full-width, no pruning, no tables, the
// same terminal and leaf rules as the real search.
func plainNegamax(pos engine.Position, depth, ply int) int16 {
	moves := pos.LegalMoves()
	if len(moves) == 0 {
		if pos.InCheck() {
			return -(engine.MaxScore - int16(ply))
		}
		return engine.DrawScore
	}
	if depth <= 0 {
		score := engine.Evaluate(pos)
		if pos.SideToMove() == engine.Black {
			score = -score
		}
		return score
	}

	best := -engine.MaxScore
	for _, m := range moves {
		undo := pos.Apply(m)
		score := -plainNegamax(pos, depth-1, ply+1)
		undo()
		if score > best {
			best = score
		}
	}
	return best
}

func mustBoard(t *testing.T, fen string) *dragontooth.Board {
	t.Helper()
	board, err := dragontooth.NewBoard(fen)
	if err != nil {
		t.Fatalf("parse fen: %v", err)
	}
	return board
}

func BenchmarkSearchStartpos(b *testing.B) {
	for i := 0; i < b.N; i++ {
		// Fresh engine per iteration keeps every search cold.
		eng := engine.New(engine.Config{})
		_, err := eng.FindBestMove(context.Background(), dragontooth.NewStartingBoard(), engine.Limits{Depth: 4})
		if err != nil {
			b.Fatalf("search: %v", err)
		}
	}
}
