package config

import (
	"fmt"
	"os"

	"github.com/alexlanpowell/blocktopia-v0-sub000/internal/game"
	lua "github.com/yuin/gopher-lua"
)

// LoadRules reads product tuning from a Lua script that returns a table:
//
//	return {
//	  board_size = 8, hand_size = 3,
//	  scoring = { points_per_cell = 1, line_points = 10, combo = { 1, 2.5, 4, 6 } },
//	  continue_rows = 4, wand_radius = 0, hand_fit_retries = 3,
//	}
//
// Missing keys keep their defaults.
func LoadRules(path string) (game.Rules, error) {
	rules := game.DefaultRules()
	if _, err := os.Stat(path); err != nil {
		return rules, fmt.Errorf("rules file %s: %w", path, err)
	}

	L := lua.NewState()
	defer L.Close()

	if err := L.DoFile(path); err != nil {
		return rules, fmt.Errorf("loading %s: %w", path, err)
	}
	tbl, ok := L.Get(-1).(*lua.LTable)
	if !ok {
		return rules, fmt.Errorf("%s must return a table", path)
	}
	return rulesFromTable(tbl, rules), nil
}

// LoadRulesString is LoadRules for an in-memory script.
func LoadRulesString(src string) (game.Rules, error) {
	rules := game.DefaultRules()
	L := lua.NewState()
	defer L.Close()

	if err := L.DoString(src); err != nil {
		return rules, fmt.Errorf("loading rules: %w", err)
	}
	tbl, ok := L.Get(-1).(*lua.LTable)
	if !ok {
		return rules, fmt.Errorf("rules script must return a table")
	}
	return rulesFromTable(tbl, rules), nil
}

func rulesFromTable(tbl *lua.LTable, d game.Rules) game.Rules {
	r := d
	r.BoardSize = getLuaInt(tbl, "board_size", d.BoardSize)
	r.HandSize = getLuaInt(tbl, "hand_size", d.HandSize)
	r.ContinueRows = getLuaInt(tbl, "continue_rows", d.ContinueRows)
	r.WandRadius = getLuaInt(tbl, "wand_radius", d.WandRadius)
	r.HandFitRetries = getLuaInt(tbl, "hand_fit_retries", d.HandFitRetries)

	if scoring, ok := tbl.RawGetString("scoring").(*lua.LTable); ok {
		r.Scoring.PointsPerCell = getLuaInt(scoring, "points_per_cell", d.Scoring.PointsPerCell)
		r.Scoring.LinePoints = getLuaInt(scoring, "line_points", d.Scoring.LinePoints)
		if combo, ok := scoring.RawGetString("combo").(*lua.LTable); ok {
			var parsed []float64
			combo.ForEach(func(_, v lua.LValue) {
				if n, ok := v.(lua.LNumber); ok {
					parsed = append(parsed, float64(n))
				}
			})
			if len(parsed) > 0 {
				r.Scoring.Combo = parsed
			}
		}
	}
	return r
}

func getLuaInt(tbl *lua.LTable, key string, fallback int) int {
	val := tbl.RawGetString(key)
	if num, ok := val.(lua.LNumber); ok {
		return int(num)
	}
	return fallback
}
