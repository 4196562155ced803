// Package tools reports which external viewers are installed.
package tools

import (
	"os"

	"Plant3D/internal/config"
)

type Program struct {
	Path      string `json:"path,omitempty"`
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

// Capabilities is what the process can hand geometry off to.
type Capabilities struct {
	CAD        Program `json:"cad"`
	GameEngine Program `json:"game_engine"`
}

// Detect stats each configured executable. A missing program disables the
// capability and is never an error.
func Detect(cfg config.ProgramsConfig) Capabilities {
	return Capabilities{
		CAD:        probe(cfg.CADPath),
		GameEngine: probe(cfg.GameEnginePath),
	}
}

func probe(path string) Program {
	p := Program{Path: path}
	if path == "" {
		p.Reason = "not configured"
		return p
	}
	info, err := os.Stat(path)
	switch {
	case err != nil:
		p.Reason = "not found"
	case info.IsDir():
		p.Reason = "is a directory"
	default:
		p.Available = true
	}
	return p
}
