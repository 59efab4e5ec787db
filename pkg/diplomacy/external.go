package diplomacy

import (
	"fmt"
	"strings"
)

// Input is the wire-format game-state value Adjudicate accepts. It is
// produced by the persistence layer from whatever turn the caller selected;
// Adjudicate performs no I/O of its own and consults no global state beyond
// StandardMap().
type Input struct {
	Variant     string           `json:"variant"`
	Phase       string           `json:"phase"` // "order" | "retreat" | "build"
	Territories []InputTerritory `json:"territories"`
	Pieces      []InputPiece     `json:"pieces"`
	Orders      []InputOrder     `json:"orders"`
}

// InputTerritory describes one territory's static and current-turn state.
// Contested carries the standoff set forward: when Phase is "retreat", a
// contested territory is one where two or more moves bounced off each other
// in the movement phase just resolved (GameState.Standoffs).
type InputTerritory struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Type         string            `json:"type"` // "inland"|"sea"|"coastal"
	Neighbours   []string          `json:"neighbours"`
	NamedCoasts  []InputNamedCoast `json:"named_coasts"`
	SupplyCenter bool              `json:"supply_center"`
	ControlledBy string            `json:"controlled_by"`
	Contested    bool              `json:"contested"`
}

// InputNamedCoast is the wire representation of one coast of a split-coast
// territory.
type InputNamedCoast struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	ParentID   string   `json:"parent_id"`
	Neighbours []string `json:"neighbours"`
}

// InputPiece describes one piece on the board.
type InputPiece struct {
	ID                  string `json:"id"`
	Nation              string `json:"nation"`
	Type                string `json:"type"` // "army"|"fleet"
	TerritoryID         string `json:"territory_id"`
	NamedCoastID        string `json:"named_coast_id,omitempty"`
	Dislodged           bool   `json:"dislodged"`
	MustRetreat         bool   `json:"must_retreat"`
	AttackerTerritoryID string `json:"attacker_territory_id,omitempty"`
}

// InputOrder describes one submitted order. Which fields apply depends on
// Type and on the phase it was submitted in (move/support/convoy for "order";
// retreat/disband for "retreat"; build/disband/waive for "build").
type InputOrder struct {
	ID           string `json:"id"`
	Nation       string `json:"nation"`
	Type         string `json:"type"`
	SourceID     string `json:"source_id"`
	TargetID     string `json:"target_id,omitempty"`
	AuxSourceID  string `json:"aux_source_id,omitempty"`
	AuxTargetID  string `json:"aux_target_id,omitempty"`
	PieceType    string `json:"piece_type,omitempty"`
	NamedCoastID string `json:"named_coast_id,omitempty"`
	ViaConvoy    bool   `json:"via_convoy,omitempty"`
}

// Output is the wire-format result of one Adjudicate call.
type Output struct {
	Orders      []OutputOrder     `json:"orders"`
	Pieces      []OutputPiece     `json:"pieces"`
	Territories []OutputTerritory `json:"territories"`
}

// OutputOrder reports one order's legality and, if legal, its outcome.
type OutputOrder struct {
	ID             string `json:"id"`
	LegalDecision  string `json:"legal_decision"` // "legal"|"illegal"
	IllegalCode    *int   `json:"illegal_code,omitempty"`
	IllegalMessage string `json:"illegal_message,omitempty"`
	Outcome        string `json:"outcome,omitempty"` // "moves"|"fails"|"succeeds"
}

// OutputPiece reports a piece's dislodgement decision. Only populated for
// the movement phase — a retreat or build phase cannot itself dislodge a
// piece under this ruleset.
type OutputPiece struct {
	ID                string `json:"id"`
	DislodgedDecision string `json:"dislodged_decision"` // "dislodged"|"sustains"
	DislodgedBy       string `json:"dislodged_by,omitempty"`
	AttackerTerritory string `json:"attacker_territory,omitempty"`
}

// OutputTerritory reports whether a territory was contested this phase.
type OutputTerritory struct {
	ID        string `json:"id"`
	Contested bool   `json:"contested"`
}

// Adjudicate is the sole entry point of pkg/diplomacy: it translates the
// wire Input into the internal GameState/Order representation, resolves the
// named phase, and translates the result back to Output. It performs no I/O
// and acquires no locks (see concurrency notes on Resolver).
func Adjudicate(in Input) (Output, error) {
	if in.Variant != "" && in.Variant != "standard" {
		return Output{}, &InvalidGameState{Reason: "unsupported variant: " + in.Variant}
	}
	m := StandardMap()

	pieceByID := make(map[string]InputPiece, len(in.Pieces))
	for _, p := range in.Pieces {
		pieceByID[p.ID] = p
	}

	gs, err := buildInputGameState(in, m)
	if err != nil {
		return Output{}, err
	}

	switch in.Phase {
	case "order":
		return adjudicateMovementPhase(in, gs, m, pieceByID)
	case "retreat":
		return adjudicateRetreatPhase(in, gs, m, pieceByID)
	case "build":
		return adjudicateBuildPhase(in, gs, m, pieceByID)
	default:
		return Output{}, &InvalidGameState{Reason: "unknown phase: " + in.Phase}
	}
}

func buildInputGameState(in Input, m *DiplomacyMap) (*GameState, error) {
	gs := &GameState{
		Phase:         PhaseMovement,
		SupplyCenters: make(map[string]Power, len(in.Territories)),
	}

	for _, t := range in.Territories {
		if !t.SupplyCenter {
			continue
		}
		owner, err := parsePowerOrNeutral(t.ControlledBy)
		if err != nil {
			return nil, &InvalidGameState{Reason: fmt.Sprintf("territory %s: %s", t.ID, err)}
		}
		gs.SupplyCenters[t.ID] = owner
		if in.Phase == "retreat" && t.Contested {
			gs.Standoffs = append(gs.Standoffs, t.ID)
		}
	}
	// Contested territories that are not supply centers still count toward
	// the standoff set carried into the retreat phase.
	if in.Phase == "retreat" {
		for _, t := range in.Territories {
			if t.SupplyCenter || !t.Contested {
				continue
			}
			gs.Standoffs = append(gs.Standoffs, t.ID)
		}
	}

	for _, p := range in.Pieces {
		power, err := parsePower(p.Nation)
		if err != nil {
			return nil, &InvalidGameState{Reason: fmt.Sprintf("piece %s: %s", p.ID, err)}
		}
		unitType, err := parseUnitType(p.Type)
		if err != nil {
			return nil, &InvalidGameState{Reason: fmt.Sprintf("piece %s: %s", p.ID, err)}
		}
		if p.TerritoryID == "" {
			return nil, &InvalidGameState{Reason: "piece " + p.ID + " has no territory"}
		}
		coast := parseCoastID(p.NamedCoastID)
		unit := Unit{Type: unitType, Power: power, Province: p.TerritoryID, Coast: coast}

		if p.Dislodged {
			gs.Dislodged = append(gs.Dislodged, DislodgedUnit{
				Unit:          unit,
				DislodgedFrom: p.TerritoryID,
				AttackerFrom:  p.AttackerTerritoryID,
			})
			continue
		}
		gs.Units = append(gs.Units, unit)
	}

	if len(gs.Dislodged) > 0 {
		gs.Phase = PhaseRetreat
	}
	return gs, nil
}

func adjudicateMovementPhase(in Input, gs *GameState, m *DiplomacyMap, pieceByID map[string]InputPiece) (Output, error) {
	preProvinceToID := make(map[string]string, len(in.Pieces))
	for _, p := range in.Pieces {
		if !p.Dislodged {
			preProvinceToID[p.TerritoryID] = p.ID
		}
	}

	type illegalInfo struct {
		code IllegalCode
		msg  string
	}
	illegal := make(map[string]illegalInfo)
	ordered := make(map[string]bool)
	var finalOrders []Order

	for _, io := range in.Orders {
		piece, ok := pieceByID[io.SourceID]
		if !ok {
			return Output{}, &InvalidGameState{Reason: "order " + io.ID + ": unknown source piece " + io.SourceID}
		}
		power, err := parsePower(piece.Nation)
		if err != nil {
			return Output{}, &InvalidGameState{Reason: err.Error()}
		}
		unitType, err := parseUnitType(piece.Type)
		if err != nil {
			return Output{}, &InvalidGameState{Reason: err.Error()}
		}

		ord := Order{
			UnitType: unitType,
			Power:    power,
			Location: piece.TerritoryID,
			Coast:    parseCoastID(piece.NamedCoastID),
		}

		switch io.Type {
		case "hold":
			ord.Type = OrderHold
		case "move":
			ord.Type = OrderMove
			ord.Target = io.TargetID
			ord.TargetCoast = parseCoastID(io.NamedCoastID)
		case "support":
			ord.Type = OrderSupport
			aux, ok := pieceByID[io.AuxSourceID]
			if !ok {
				return Output{}, &InvalidGameState{Reason: "order " + io.ID + ": unknown aux source " + io.AuxSourceID}
			}
			auxType, err := parseUnitType(aux.Type)
			if err != nil {
				return Output{}, &InvalidGameState{Reason: err.Error()}
			}
			ord.AuxLoc = aux.TerritoryID
			ord.AuxUnitType = auxType
			ord.AuxTarget = io.AuxTargetID
		case "convoy":
			ord.Type = OrderConvoy
			aux, ok := pieceByID[io.AuxSourceID]
			if !ok {
				return Output{}, &InvalidGameState{Reason: "order " + io.ID + ": unknown aux source " + io.AuxSourceID}
			}
			ord.AuxLoc = aux.TerritoryID
			ord.AuxTarget = io.AuxTargetID
			ord.AuxUnitType = Army
		default:
			return Output{}, &InvalidGameState{Reason: "order " + io.ID + ": unknown movement order type " + io.Type}
		}

		if err := ValidateOrder(ord, gs, m); err != nil {
			ve, _ := err.(*ValidationError)
			info := illegalInfo{msg: err.Error()}
			if ve != nil {
				info.code = ve.Code
				info.msg = ve.Message
			}
			illegal[io.ID] = info
			finalOrders = append(finalOrders, Order{
				UnitType: ord.UnitType, Power: ord.Power, Location: ord.Location, Coast: ord.Coast, Type: OrderHold,
			})
			ordered[ord.Location] = true
			continue
		}
		finalOrders = append(finalOrders, ord)
		ordered[ord.Location] = true
	}

	for _, u := range gs.Units {
		if !ordered[u.Province] {
			finalOrders = append(finalOrders, Order{UnitType: u.Type, Power: u.Power, Location: u.Province, Coast: u.Coast, Type: OrderHold})
		}
	}

	results, dislodgedUnits := ResolveOrders(finalOrders, gs, m)
	ApplyResolution(gs, m, results, dislodgedUnits)

	resultByLoc := make(map[string]ResolvedOrder, len(results))
	for _, ro := range results {
		resultByLoc[ro.Order.Location] = ro
	}

	var out Output
	for _, io := range in.Orders {
		piece := pieceByID[io.SourceID]
		if info, isIllegal := illegal[io.ID]; isIllegal {
			code := int(info.code)
			out.Orders = append(out.Orders, OutputOrder{
				ID: io.ID, LegalDecision: "illegal", IllegalCode: &code, IllegalMessage: info.msg,
			})
			continue
		}
		ro := resultByLoc[piece.TerritoryID]
		out.Orders = append(out.Orders, OutputOrder{
			ID: io.ID, LegalDecision: "legal", Outcome: movementOutcome(ro),
		})
	}

	dislodgedByProvince := make(map[string]DislodgedUnit, len(dislodgedUnits))
	for _, d := range dislodgedUnits {
		dislodgedByProvince[d.DislodgedFrom] = d
	}
	for _, p := range in.Pieces {
		if p.Dislodged {
			continue
		}
		if d, ok := dislodgedByProvince[p.TerritoryID]; ok {
			out.Pieces = append(out.Pieces, OutputPiece{
				ID: p.ID, DislodgedDecision: "dislodged",
				DislodgedBy:       preProvinceToID[d.AttackerFrom],
				AttackerTerritory: d.AttackerFrom,
			})
			continue
		}
		out.Pieces = append(out.Pieces, OutputPiece{ID: p.ID, DislodgedDecision: "sustains"})
	}

	// ApplyResolution has recorded the standoffs (two or more moves that all
	// bounced) in gs.Standoffs.
	contested := make(map[string]bool)
	for _, id := range gs.Standoffs {
		contested[id] = true
	}
	for _, t := range in.Territories {
		out.Territories = append(out.Territories, OutputTerritory{ID: t.ID, Contested: contested[t.ID]})
	}

	return out, nil
}

func movementOutcome(ro ResolvedOrder) string {
	if ro.Order.Type == OrderMove {
		if ro.Result == ResultSucceeded {
			return "moves"
		}
		return "fails"
	}
	if ro.Result == ResultSucceeded {
		return "succeeds"
	}
	return "fails"
}

func adjudicateRetreatPhase(in Input, gs *GameState, m *DiplomacyMap, pieceByID map[string]InputPiece) (Output, error) {
	type illegalInfo struct {
		code IllegalCode
		msg  string
	}
	illegal := make(map[string]illegalInfo)
	var retreatOrders []RetreatOrder

	for _, io := range in.Orders {
		piece, ok := pieceByID[io.SourceID]
		if !ok {
			return Output{}, &InvalidGameState{Reason: "order " + io.ID + ": unknown source piece " + io.SourceID}
		}
		power, err := parsePower(piece.Nation)
		if err != nil {
			return Output{}, &InvalidGameState{Reason: err.Error()}
		}
		unitType, err := parseUnitType(piece.Type)
		if err != nil {
			return Output{}, &InvalidGameState{Reason: err.Error()}
		}

		ord := RetreatOrder{
			UnitType: unitType,
			Power:    power,
			Location: piece.TerritoryID,
			Coast:    parseCoastID(piece.NamedCoastID),
		}

		switch io.Type {
		case "retreat":
			ord.Type = RetreatMove
			ord.Target = io.TargetID
			ord.TargetCoast = parseCoastID(io.NamedCoastID)
		case "disband":
			ord.Type = RetreatDisband
		default:
			return Output{}, &InvalidGameState{Reason: "order " + io.ID + ": unknown retreat order type " + io.Type}
		}

		if err := ValidateRetreatOrder(ord, gs, m); err != nil {
			ve, _ := err.(*ValidationError)
			info := illegalInfo{msg: err.Error(), code: IllegalRetreatTargetInvalid}
			if ve != nil {
				info.code = ve.Code
				info.msg = ve.Message
			}
			illegal[io.ID] = info
			ord.Type = RetreatDisband
		}
		retreatOrders = append(retreatOrders, ord)
	}

	results := ResolveRetreats(retreatOrders, gs, m)
	ApplyRetreats(gs, results, m)

	resultByLoc := make(map[string]RetreatResult, len(results))
	for _, rr := range results {
		resultByLoc[rr.Order.Location] = rr
	}

	var out Output
	for _, io := range in.Orders {
		piece := pieceByID[io.SourceID]
		if info, isIllegal := illegal[io.ID]; isIllegal {
			code := int(info.code)
			out.Orders = append(out.Orders, OutputOrder{
				ID: io.ID, LegalDecision: "illegal", IllegalCode: &code, IllegalMessage: info.msg,
			})
			continue
		}
		rr := resultByLoc[piece.TerritoryID]
		outcome := "fails"
		if rr.Result == ResultSucceeded {
			outcome = "succeeds"
		}
		out.Orders = append(out.Orders, OutputOrder{ID: io.ID, LegalDecision: "legal", Outcome: outcome})
	}

	for _, t := range in.Territories {
		out.Territories = append(out.Territories, OutputTerritory{ID: t.ID, Contested: false})
	}

	return out, nil
}

func adjudicateBuildPhase(in Input, gs *GameState, m *DiplomacyMap, pieceByID map[string]InputPiece) (Output, error) {
	type illegalInfo struct {
		code IllegalCode
		msg  string
	}
	illegal := make(map[string]illegalInfo)
	var buildOrders []BuildOrder

	for _, io := range in.Orders {
		power, err := parsePower(io.Nation)
		if err != nil {
			return Output{}, &InvalidGameState{Reason: err.Error()}
		}

		ord := BuildOrder{Power: power}

		switch io.Type {
		case "build":
			ord.Type = BuildUnit
			unitType, err := parseUnitType(io.PieceType)
			if err != nil {
				return Output{}, &InvalidGameState{Reason: "order " + io.ID + ": " + err.Error()}
			}
			ord.UnitType = unitType
			ord.Location = io.TargetID
			ord.Coast = parseCoastID(io.NamedCoastID)
		case "disband":
			ord.Type = DisbandUnit
			piece, ok := pieceByID[io.SourceID]
			if !ok {
				return Output{}, &InvalidGameState{Reason: "order " + io.ID + ": unknown source piece " + io.SourceID}
			}
			unitType, err := parseUnitType(piece.Type)
			if err != nil {
				return Output{}, &InvalidGameState{Reason: err.Error()}
			}
			ord.UnitType = unitType
			ord.Location = piece.TerritoryID
			ord.Coast = parseCoastID(piece.NamedCoastID)
		case "waive":
			ord.Type = WaiveBuild
		default:
			return Output{}, &InvalidGameState{Reason: "order " + io.ID + ": unknown build order type " + io.Type}
		}

		if err := ValidateBuildOrder(ord, gs, m); err != nil {
			ve, _ := err.(*ValidationError)
			info := illegalInfo{msg: err.Error(), code: IllegalBuildExceedsAllowed}
			if ve != nil {
				info.code = ve.Code
				info.msg = ve.Message
			}
			illegal[io.ID] = info
			continue
		}
		buildOrders = append(buildOrders, ord)
	}

	results := ResolveBuildOrders(buildOrders, gs, m)
	ApplyBuildOrders(gs, results)

	resultByKey := make(map[string]BuildResult, len(results))
	for _, br := range results {
		resultByKey[string(br.Order.Power)+"|"+br.Order.Location] = br
	}

	var out Output
	for _, io := range in.Orders {
		if info, isIllegal := illegal[io.ID]; isIllegal {
			code := int(info.code)
			out.Orders = append(out.Orders, OutputOrder{
				ID: io.ID, LegalDecision: "illegal", IllegalCode: &code, IllegalMessage: info.msg,
			})
			continue
		}
		power, _ := parsePower(io.Nation)
		loc := io.TargetID
		if io.Type == "disband" {
			if piece, ok := pieceByID[io.SourceID]; ok {
				loc = piece.TerritoryID
			}
		}
		br := resultByKey[string(power)+"|"+loc]
		if br.Code != IllegalNone {
			code := int(br.Code)
			out.Orders = append(out.Orders, OutputOrder{
				ID: io.ID, LegalDecision: "illegal", IllegalCode: &code, IllegalMessage: br.Code.String(),
			})
			continue
		}
		outcome := "fails"
		if br.Result == ResultSucceeded {
			outcome = "succeeds"
		}
		out.Orders = append(out.Orders, OutputOrder{ID: io.ID, LegalDecision: "legal", Outcome: outcome})
	}

	for _, t := range in.Territories {
		out.Territories = append(out.Territories, OutputTerritory{ID: t.ID, Contested: false})
	}

	return out, nil
}

func parsePower(s string) (Power, error) {
	lower := strings.ToLower(s)
	switch Power(lower) {
	case Austria, England, France, Germany, Italy, Russia, Turkey:
		return Power(lower), nil
	default:
		return Neutral, fmt.Errorf("unknown nation %q", s)
	}
}

func parsePowerOrNeutral(s string) (Power, error) {
	if s == "" {
		return Neutral, nil
	}
	return parsePower(s)
}

func parseUnitType(s string) (UnitType, error) {
	switch s {
	case "army":
		return Army, nil
	case "fleet":
		return Fleet, nil
	default:
		return Army, fmt.Errorf("unknown piece type %q", s)
	}
}

// parseCoastID accepts either a bare coast code ("nc", "sc", "ec", "wc") or
// a composite named-coast id ("spa/nc"); the province prefix, if present, is
// discarded since the caller already supplies the territory separately.
func parseCoastID(s string) Coast {
	if s == "" {
		return NoCoast
	}
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '/' {
			s = s[i+1:]
			break
		}
	}
	switch Coast(s) {
	case NorthCoast, SouthCoast, EastCoast, WestCoast:
		return Coast(s)
	default:
		return NoCoast
	}
}
