package main

import (
	"sort"
	"strconv"
	"time"
)

// Game is the authoritative state machine. It is owned by exactly one hub
// goroutine, which applies events one at a time; nothing else reads or
// mutates it, so no locking is needed.
//
// Events whose preconditions fail are silent no-ops. The engine never
// surfaces an error for malformed input; a misbehaving client cannot take
// the game down.
type Game struct {
	title      string
	countdown  int
	categories []Category

	registry *Registry
	buzzer   *Buzzer

	phase           GamePhase
	currentQuestion *Question
	currentCategory string
	answered        map[string]bool
	showAnswer      bool
}

func newGame(title string, countdown int, categories []Category) *Game {
	return &Game{
		title:      title,
		countdown:  countdown,
		categories: categories,
		registry:   newRegistry(),
		buzzer:     newBuzzer(),
		phase:      PhaseLobby,
		answered:   make(map[string]bool),
	}
}

func answeredKey(category string, value int) string {
	return category + "-" + strconv.Itoa(value)
}

// clearQuestion closes the current round: no active question, empty buzzer
// order, buzzer locked, answer hidden.
func (g *Game) clearQuestion() {
	g.currentQuestion = nil
	g.currentCategory = ""
	g.buzzer.ResetRound()
	g.buzzer.Lock()
	g.showAnswer = false
}

func (g *Game) JoinPlayer(connID, name string) (*Player, bool) {
	return g.registry.JoinAsPlayer(connID, name)
}

func (g *Game) Disconnect(connID string) {
	g.registry.Disconnect(connID)
}

func (g *Game) StartGame() {
	g.registry.ResetScores()
	g.answered = make(map[string]bool)
	g.clearQuestion()
	g.phase = PhasePlaying
}

// SelectQuestion loads the question at category/value as the current round
// and returns it, or nil if no such question exists. Re-selecting an
// already-answered question is deliberately permitted; the board client
// greys answered cells but the host keeps final say.
func (g *Game) SelectQuestion(category string, value int) *Question {
	for _, c := range g.categories {
		if c.Name != category {
			continue
		}
		for _, q := range c.Questions {
			if q.Value != value {
				continue
			}

			selected := q
			g.currentQuestion = &selected
			g.currentCategory = c.Name
			g.buzzer.ResetRound()
			g.buzzer.Unlock()
			g.showAnswer = false
			g.phase = PhaseQuestion

			return g.currentQuestion
		}
	}

	return nil
}

// Buzz resolves the connection to a player and hands off to the buzzer.
// Returns the player's name and whether the buzz was accepted.
func (g *Game) Buzz(connID string, now time.Time) (string, bool) {
	p := g.registry.Resolve(connID)
	if p == nil {
		return "", false
	}

	if !g.buzzer.TryBuzz(p.ID, p.Name, now) {
		return "", false
	}

	return p.Name, true
}

func (g *Game) LockBuzzer() {
	g.buzzer.Lock()
}

func (g *Game) UnlockBuzzer() {
	g.buzzer.Unlock()
}

func (g *Game) ClearBuzzers() {
	g.buzzer.ResetRound()
}

func (g *Game) RevealAnswer() {
	if g.currentQuestion == nil {
		return
	}

	g.showAnswer = true
	g.phase = PhaseAnswer
}

// CorrectAnswer awards the question's value to the player, closes the
// question for the rest of the game, and returns to the board.
func (g *Game) CorrectAnswer(playerID string) {
	if g.currentQuestion == nil {
		return
	}

	p := g.registry.Resolve(playerID)
	if p == nil {
		return
	}

	p.Score += g.currentQuestion.Value
	g.answered[answeredKey(g.currentCategory, g.currentQuestion.Value)] = true
	g.clearQuestion()
	g.phase = PhasePlaying
}

// IncorrectAnswer deducts the question's value, strikes the player from the
// buzzer order, and reopens the buzzer so the remaining contenders can try.
// The question stays active.
func (g *Game) IncorrectAnswer(playerID string) {
	if g.currentQuestion == nil {
		return
	}

	p := g.registry.Resolve(playerID)
	if p == nil {
		return
	}

	p.Score -= g.currentQuestion.Value
	g.buzzer.Remove(playerID)
	g.buzzer.Unlock()
}

// SkipQuestion abandons the current question, still marking it answered so
// it cannot come back up through normal play.
func (g *Game) SkipQuestion() {
	if g.currentQuestion != nil {
		g.answered[answeredKey(g.currentCategory, g.currentQuestion.Value)] = true
	}

	g.clearQuestion()
	g.phase = PhasePlaying
}

func (g *Game) ShowLeaderboard() {
	g.clearQuestion()
	g.phase = PhaseLeaderboard
}

func (g *Game) BackToGame() {
	if g.currentQuestion != nil {
		g.clearQuestion()
	}

	g.phase = PhasePlaying
}

// ResetGame returns the state to its initial shape. Player records and the
// category configuration survive; scores and question progress do not.
func (g *Game) ResetGame() {
	g.registry.ResetScores()
	g.answered = make(map[string]bool)
	g.clearQuestion()
	g.phase = PhaseLobby
}

// Snapshot materializes the full state for broadcast.
func (g *Game) Snapshot() Snapshot {
	keys := make([]string, 0, len(g.answered))
	for k := range g.answered {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return Snapshot{
		Players:           g.registry.Players(),
		CurrentQuestion:   g.currentQuestion,
		CurrentCategory:   g.currentCategory,
		AnsweredQuestions: keys,
		BuzzerOrder:       g.buzzer.Order(),
		BuzzerLocked:      g.buzzer.Locked(),
		Phase:             g.phase,
		ShowAnswer:        g.showAnswer,
	}
}

// Config builds the static configuration message: title, countdown, and the
// category/value skeleton. Prompts and answers are never included.
func (g *Game) Config() GameConfigMessage {
	cats := make([]CategorySkeleton, 0, len(g.categories))
	for _, c := range g.categories {
		values := make([]ValueSkeleton, 0, len(c.Questions))
		for _, q := range c.Questions {
			values = append(values, ValueSkeleton{Value: q.Value})
		}
		cats = append(cats, CategorySkeleton{
			Name:      c.Name,
			Questions: values,
		})
	}

	return GameConfigMessage{
		Type:       "gameConfig",
		Title:      g.title,
		Countdown:  g.countdown,
		Categories: cats,
	}
}
