package service

import (
	"github.com/corvini/diplomacy-adjudicator/internal/model"
	"github.com/corvini/diplomacy-adjudicator/pkg/diplomacy"
)

// This file bridges the three internal resolution paths in phase_service.go
// to diplomacy.Adjudicate, the package's sole documented wire entry point
// (SPEC_FULL.md §4.6/§6). The resolver call in phase_service.go stays the
// source of truth for gs mutation and for model.Order.Result, since
// Output.Outcome collapses OrderResult's richer states (dislodged/bounced/cut
// /void) down to "succeeds"/"fails"/"moves". Adjudicate is run alongside it,
// purely to recover each order's structured legal_decision/illegal_code, which
// the direct ValidateX calls in order_service.go and the Resolve/Apply calls
// here never surface past a plain error string.
//
// Orders and pieces are identified on the wire by "<power>|<province>" — one
// unit/order per province holds for every phase this adjudicator resolves, so
// the pair is a stable, collision-free ID without a separate counter.

func pieceWireID(power diplomacy.Power, province string) string {
	return string(power) + "|" + province
}

// territoriesInput renders gs's supply-center ownership as wire territories.
// Adjudicate consults diplomacy.StandardMap() directly for adjacency, so
// Neighbours/NamedCoasts are left unset here — they're informational only,
// never read back by the resolver.
func territoriesInput(gs *diplomacy.GameState, m *diplomacy.DiplomacyMap, contested map[string]bool) []diplomacy.InputTerritory {
	territories := make([]diplomacy.InputTerritory, 0, len(m.Provinces))
	for id, prov := range m.Provinces {
		territories = append(territories, diplomacy.InputTerritory{
			ID:           id,
			SupplyCenter: prov.IsSupplyCenter,
			ControlledBy: string(gs.SupplyCenters[id]),
			Contested:    contested[id],
		})
	}
	return territories
}

func coastWireID(coast diplomacy.Coast) string {
	if coast == diplomacy.NoCoast {
		return ""
	}
	return string(coast)
}

// illegalEntry is the structured legality verdict Adjudicate returns for one
// order, keyed by pieceWireID(order.Power, order.Location).
type illegalEntry struct {
	code int
	msg  string
}

func illegalCodesFromOutput(out diplomacy.Output) map[string]illegalEntry {
	codes := make(map[string]illegalEntry, len(out.Orders))
	for _, o := range out.Orders {
		if o.LegalDecision == "illegal" && o.IllegalCode != nil {
			codes[o.ID] = illegalEntry{code: *o.IllegalCode, msg: o.IllegalMessage}
		}
	}
	return codes
}

// applyIllegalCodes stamps model.Order rows with the illegal_code/message
// Adjudicate reported for the matching power|location, leaving legal orders
// untouched.
func applyIllegalCodes(orders []model.Order, codes map[string]illegalEntry) {
	for i := range orders {
		entry, ok := codes[orders[i].Power+"|"+orders[i].Location]
		if !ok {
			continue
		}
		code := entry.code
		orders[i].IllegalCode = &code
		orders[i].IllegalMsg = entry.msg
	}
}

// movementAdjudicateInput re-expresses a resolved movement phase as the wire
// Input Adjudicate expects, so the service layer can recover structured
// illegal codes for orders it already validated and resolved directly.
func movementAdjudicateInput(gs *diplomacy.GameState, m *diplomacy.DiplomacyMap, orders []diplomacy.Order) diplomacy.Input {
	in := diplomacy.Input{Variant: "standard", Phase: "order"}
	in.Territories = territoriesInput(gs, m, nil)

	for _, u := range gs.Units {
		in.Pieces = append(in.Pieces, diplomacy.InputPiece{
			ID:           pieceWireID(u.Power, u.Province),
			Nation:       string(u.Power),
			Type:         u.Type.String(),
			TerritoryID:  u.Province,
			NamedCoastID: coastWireID(u.Coast),
		})
	}

	for _, o := range orders {
		io := diplomacy.InputOrder{
			ID:       pieceWireID(o.Power, o.Location),
			Nation:   string(o.Power),
			SourceID: pieceWireID(o.Power, o.Location),
		}
		switch o.Type {
		case diplomacy.OrderHold:
			io.Type = "hold"
		case diplomacy.OrderMove:
			io.Type = "move"
			io.TargetID = o.Target
			io.NamedCoastID = coastWireID(o.TargetCoast)
		case diplomacy.OrderSupport:
			io.Type = "support"
			io.AuxSourceID = pieceWireID(unitPowerAt(gs, o.AuxLoc), o.AuxLoc)
			io.AuxTargetID = o.AuxTarget
		case diplomacy.OrderConvoy:
			io.Type = "convoy"
			io.AuxSourceID = pieceWireID(unitPowerAt(gs, o.AuxLoc), o.AuxLoc)
			io.AuxTargetID = o.AuxTarget
		default:
			continue
		}
		in.Orders = append(in.Orders, io)
	}
	return in
}

// retreatAdjudicateInput re-expresses a resolved retreat phase as wire Input.
func retreatAdjudicateInput(gs *diplomacy.GameState, m *diplomacy.DiplomacyMap, orders []diplomacy.RetreatOrder) diplomacy.Input {
	standoff := make(map[string]bool, len(gs.Standoffs))
	for _, s := range gs.Standoffs {
		standoff[s] = true
	}

	in := diplomacy.Input{Variant: "standard", Phase: "retreat"}
	in.Territories = territoriesInput(gs, m, standoff)

	for _, u := range gs.Units {
		in.Pieces = append(in.Pieces, diplomacy.InputPiece{
			ID:           pieceWireID(u.Power, u.Province),
			Nation:       string(u.Power),
			Type:         u.Type.String(),
			TerritoryID:  u.Province,
			NamedCoastID: coastWireID(u.Coast),
		})
	}
	for _, d := range gs.Dislodged {
		in.Pieces = append(in.Pieces, diplomacy.InputPiece{
			ID:                  pieceWireID(d.Unit.Power, d.DislodgedFrom),
			Nation:              string(d.Unit.Power),
			Type:                d.Unit.Type.String(),
			TerritoryID:         d.DislodgedFrom,
			NamedCoastID:        coastWireID(d.Unit.Coast),
			Dislodged:           true,
			AttackerTerritoryID: d.AttackerFrom,
		})
	}

	for _, o := range orders {
		io := diplomacy.InputOrder{
			ID:       pieceWireID(o.Power, o.Location),
			Nation:   string(o.Power),
			SourceID: pieceWireID(o.Power, o.Location),
		}
		switch o.Type {
		case diplomacy.RetreatMove:
			io.Type = "retreat"
			io.TargetID = o.Target
			io.NamedCoastID = coastWireID(o.TargetCoast)
		case diplomacy.RetreatDisband:
			io.Type = "disband"
		}
		in.Orders = append(in.Orders, io)
	}
	return in
}

// buildAdjudicateInput re-expresses a resolved build phase as wire Input.
func buildAdjudicateInput(gs *diplomacy.GameState, m *diplomacy.DiplomacyMap, orders []diplomacy.BuildOrder) diplomacy.Input {
	in := diplomacy.Input{Variant: "standard", Phase: "build"}
	in.Territories = territoriesInput(gs, m, nil)

	for _, u := range gs.Units {
		in.Pieces = append(in.Pieces, diplomacy.InputPiece{
			ID:           pieceWireID(u.Power, u.Province),
			Nation:       string(u.Power),
			Type:         u.Type.String(),
			TerritoryID:  u.Province,
			NamedCoastID: coastWireID(u.Coast),
		})
	}

	for _, o := range orders {
		io := diplomacy.InputOrder{
			ID:     pieceWireID(o.Power, o.Location),
			Nation: string(o.Power),
		}
		switch o.Type {
		case diplomacy.BuildUnit:
			io.Type = "build"
			io.TargetID = o.Location
			io.PieceType = o.UnitType.String()
			io.NamedCoastID = coastWireID(o.Coast)
		case diplomacy.DisbandUnit:
			io.Type = "disband"
			io.SourceID = pieceWireID(o.Power, o.Location)
		case diplomacy.WaiveBuild:
			io.Type = "waive"
		}
		in.Orders = append(in.Orders, io)
	}
	return in
}

// unitPowerAt returns the power of the unit standing at province, or Neutral
// if unoccupied. Used to recover a support/convoy order's aux piece owner,
// since diplomacy.Order only carries the aux province, not its occupant.
func unitPowerAt(gs *diplomacy.GameState, province string) diplomacy.Power {
	if u := gs.UnitAt(province); u != nil {
		return u.Power
	}
	return diplomacy.Neutral
}
