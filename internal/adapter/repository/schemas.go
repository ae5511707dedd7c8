package repository

import "github.com/eslsoft/phrasedrill/pkg/filterexpr"

var listPhrasesSchema = filterexpr.Schema{
	Fields: map[string]filterexpr.Field{
		"notebook":   {Kind: filterexpr.KindString, Ops: []filterexpr.Op{filterexpr.OpEQ, filterexpr.OpIN}},
		"difficulty": {Kind: filterexpr.KindString, Ops: []filterexpr.Op{filterexpr.OpEQ, filterexpr.OpIN}},
		"source":     {Kind: filterexpr.KindString, Ops: []filterexpr.Op{filterexpr.OpSW}},
		"target":     {Kind: filterexpr.KindString, Ops: []filterexpr.Op{filterexpr.OpSW}},
		"keyword":    {Kind: filterexpr.KindString, Ops: []filterexpr.Op{filterexpr.OpEQ}},
		"id":         {Kind: filterexpr.KindNumber, Ops: []filterexpr.Op{filterexpr.OpGTE, filterexpr.OpLTE}},
		"has_audio":  {Kind: filterexpr.KindBool, Ops: []filterexpr.Op{filterexpr.OpEQ}},
		"created_at": {Kind: filterexpr.KindTimestamp, Ops: []filterexpr.Op{filterexpr.OpGTE, filterexpr.OpLTE}},
	},
	Order: filterexpr.OrderSchema{
		Keys:     []string{"created_at", "updated_at", "id", "source_text", "difficulty", "notebook"},
		Default:  filterexpr.OrderTerm{Key: "created_at"},
		Tiebreak: filterexpr.OrderTerm{Key: "id"},
	},
}

// filterColumns maps filter identifiers onto table columns.
var filterColumns = map[string]string{
	"notebook":   "notebook",
	"difficulty": "difficulty",
	"source":     "source_text",
	"target":     "target_text",
	"id":         "id",
	"created_at": "created_at",
}
