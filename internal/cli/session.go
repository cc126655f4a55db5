package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"lightline-cli/internal/editor"
	"lightline-cli/internal/model"
	"lightline-cli/internal/store"
)

// levelSession is the stored editing session of one level, resumed for a
// single command.
type levelSession struct {
	store store.Store
	cfg   *store.GlobalConfig
	name  string
	rec   store.LevelRecord
	ed    *editor.Editor
}

func openSession(cmd *cobra.Command, app *App) (*levelSession, error) {
	s, err := openStore(app)
	if err != nil {
		return nil, err
	}
	name, err := currentLevel(app)
	if err != nil {
		return nil, err
	}
	cfg, err := store.LoadConfig()
	if err != nil {
		return nil, err
	}
	sess, rec, err := s.LoadSession(cmdContext(cmd), name)
	if err != nil {
		return nil, err
	}
	return &levelSession{
		store: s,
		cfg:   cfg,
		name:  rec.Name,
		rec:   rec,
		ed:    editor.Resume(sess, cfg.EditorSettings()),
	}, nil
}

func (ls *levelSession) level() *model.Level { return &ls.ed.Level }

type journalEntry struct {
	action  editor.Action
	changed bool
}

func (ls *levelSession) execute(actions ...editor.Action) []journalEntry {
	entries := make([]journalEntry, 0, len(actions))
	for _, a := range actions {
		h := ls.ed.Level.Hash()
		ls.ed.Execute(a)
		entries = append(entries, journalEntry{action: a, changed: ls.ed.Level.Hash() != h})
	}
	return entries
}

// run executes actions in order and stores the session, saving the level with
// it. Every action lands in the journal. It reports whether the level changed.
func (ls *levelSession) run(ctx context.Context, actions ...editor.Action) (bool, error) {
	before := ls.ed.Level.Hash()
	return ls.commit(ctx, before, ls.execute(actions...))
}

// commit stores the session and journals entries. before is the level hash
// prior to the first entry.
func (ls *levelSession) commit(ctx context.Context, before string, entries []journalEntry) (bool, error) {
	if err := ls.save(ctx); err != nil {
		return false, err
	}
	for _, e := range entries {
		if _, err := ls.store.AppendJournal(ctx, ls.name, e.action.Name(), e.action, e.changed); err != nil {
			return false, fmt.Errorf("journal: %w", err)
		}
	}
	changed := ls.rec.Hash != before
	log.Debug().Str("levelName", ls.name).Int("actions", len(entries)).Bool("changed", changed).Msg("session updated")
	return changed, nil
}

func (ls *levelSession) save(ctx context.Context) error {
	rec, err := ls.store.SaveSession(ctx, ls.name, ls.ed.Session(), true)
	if err != nil {
		return err
	}
	ls.rec = rec
	return nil
}

func (ls *levelSession) respond(cmd *cobra.Command, app *App, data any, changed bool) error {
	return writeOut(cmd, app, envelope{
		Data: data,
		Meta: &meta{Changed: changed, Level: ls.name, Hash: ls.rec.Hash},
	})
}

// runAndRespond runs actions and writes data(level) with the change flag.
func (ls *levelSession) runAndRespond(cmd *cobra.Command, app *App, data func(*model.Level) any, actions ...editor.Action) error {
	changed, err := ls.run(cmdContext(cmd), actions...)
	if err != nil {
		return writeErr(cmd, err)
	}
	return ls.respond(cmd, app, data(ls.level()), changed)
}

func (ls *levelSession) light(arg string) (model.LightID, *model.TimedEvent, *model.LightEvent, error) {
	id, err := parseLightArg(arg)
	if err != nil {
		return model.LightID{}, nil, nil, err
	}
	ev, lt := ls.ed.Level.Light(id)
	if lt == nil {
		return model.LightID{}, nil, nil, errNotFound("light", arg)
	}
	return id, ev, lt, nil
}

func (ls *levelSession) waypoint(lightArg, wpArg string) (model.LightID, model.WaypointID, error) {
	id, _, lt, err := ls.light(lightArg)
	if err != nil {
		return model.LightID{}, model.WaypointID{}, err
	}
	wp, err := model.ParseWaypointID(wpArg)
	if err != nil {
		return model.LightID{}, model.WaypointID{}, err
	}
	if _, ok := lt.Movement.Frame(wp); !ok {
		return model.LightID{}, model.WaypointID{}, errNotFound("waypoint", fmt.Sprintf("%s/%s", lightArg, wp))
	}
	return id, wp, nil
}

func (ls *levelSession) event(arg string) (int, *model.TimedEvent, error) {
	i, err := parseEventArg(arg)
	if err != nil {
		return 0, nil, err
	}
	if i >= len(ls.ed.Level.Events) {
		return 0, nil, errNotFound("event", arg)
	}
	return i, &ls.ed.Level.Events[i], nil
}

func (ls *levelSession) effect(arg string) (int, *model.EffectEvent, error) {
	i, ev, err := ls.event(arg)
	if err != nil {
		return 0, nil, err
	}
	if ev.Event.Effect == nil {
		return 0, nil, fmt.Errorf("event %d is not an effect", i)
	}
	return i, ev.Event.Effect, nil
}
