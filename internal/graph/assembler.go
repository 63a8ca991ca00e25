package graph

import (
	"fmt"

	"kintree/internal/models"
	"kintree/internal/repository"
)

// maxGraphMembers bounds how many members a single graph can select
const maxGraphMembers = 1000

// Assembler builds the full visualization graph for one family: home
// members, members pulled in through linked regions, members explicitly
// added to the family's regions, plus the relationships and region metadata
// that connect them.
type Assembler struct {
	members       *repository.MemberRepository
	regions       *repository.RegionRepository
	relationships *repository.RelationshipRepository
	positions     *repository.PositionRepository
}

// NewAssembler creates a graph assembler
func NewAssembler(members *repository.MemberRepository, regions *repository.RegionRepository,
	relationships *repository.RelationshipRepository, positions *repository.PositionRepository) *Assembler {
	return &Assembler{
		members:       members,
		regions:       regions,
		relationships: relationships,
		positions:     positions,
	}
}

// Assemble builds the graph document for the given family
func (a *Assembler) Assemble(familyID string) (*Document, error) {
	regions, err := a.regions.ListByFamily(familyID)
	if err != nil {
		return nil, err
	}

	// Linked-family index. When several regions link the same family the
	// last one listed wins for auto-attachment.
	linkedRegion := make(map[string]string)
	var linkedFamilyIDs []string
	for _, region := range regions {
		if region.LinkedFamilyID == nil {
			continue
		}
		if _, seen := linkedRegion[*region.LinkedFamilyID]; !seen {
			linkedFamilyIDs = append(linkedFamilyIDs, *region.LinkedFamilyID)
		}
		linkedRegion[*region.LinkedFamilyID] = region.ID
	}

	selected, err := a.selectMembers(familyID, linkedFamilyIDs)
	if err != nil {
		return nil, err
	}

	memberIDs := make([]string, 0, len(selected))
	for _, member := range selected {
		memberIDs = append(memberIDs, member.ID)
	}

	explicitRegions, err := a.members.ExplicitRegionIDs(memberIDs)
	if err != nil {
		return nil, err
	}

	positions, err := a.positions.MapForFamily(familyID, memberIDs)
	if err != nil {
		return nil, err
	}

	nodes := make([]Node, 0, len(selected))
	for _, member := range selected {
		regionIDs := append([]string{}, explicitRegions[member.ID]...)
		if regionID, ok := linkedRegion[member.FamilyID]; ok && !contains(regionIDs, regionID) {
			regionIDs = append(regionIDs, regionID)
		}

		var x, y int
		if pos, ok := positions[member.ID]; ok {
			x, y = pos.X, pos.Y
		}

		nodes = append(nodes, Node{
			ID:     member.ID,
			Name:   member.Name,
			Gender: member.Gender,
			X:      x,
			Y:      y,
			Data:   NodeData{Member: member, RegionIDs: regionIDs},
		})
	}

	edges, err := a.assembleEdges(memberIDs)
	if err != nil {
		return nil, err
	}

	if regions == nil {
		regions = []models.Region{}
	}
	return &Document{Nodes: nodes, Edges: edges, Regions: regions}, nil
}

// selectMembers unions the three inclusion paths without duplicates: home
// family, linked home families, and explicit region membership
func (a *Assembler) selectMembers(familyID string, linkedFamilyIDs []string) ([]models.Member, error) {
	homeFamilies := append([]string{familyID}, linkedFamilyIDs...)
	byFamily, err := a.members.ListByFamilies(homeFamilies, maxGraphMembers)
	if err != nil {
		return nil, fmt.Errorf("failed to load family members: %w", err)
	}

	byRegion, err := a.members.ListExplicitRegionMembers(familyID, maxGraphMembers)
	if err != nil {
		return nil, fmt.Errorf("failed to load region members: %w", err)
	}

	seen := make(map[string]bool)
	var selected []models.Member
	for _, member := range append(byFamily, byRegion...) {
		if seen[member.ID] || len(selected) >= maxGraphMembers {
			continue
		}
		seen[member.ID] = true
		selected = append(selected, member)
	}

	return selected, nil
}

// assembleEdges emits an edge for every relationship touching at least one
// selected member
func (a *Assembler) assembleEdges(memberIDs []string) ([]Edge, error) {
	edges := []Edge{}

	spouses, err := a.relationships.ListSpousesTouching(memberIDs)
	if err != nil {
		return nil, err
	}
	for _, rel := range spouses {
		edges = append(edges, Edge{
			ID:           rel.ID,
			Source:       rel.Member1ID,
			Target:       rel.Member2ID,
			Type:         EdgeSpouse,
			MarriageDate: rel.MarriageDate,
		})
	}

	parentChild, err := a.relationships.ListParentChildTouching(memberIDs)
	if err != nil {
		return nil, err
	}
	for _, rel := range parentChild {
		edges = append(edges, Edge{
			ID:     rel.ID,
			Source: rel.ParentID,
			Target: rel.ChildID,
			Type:   EdgeParentChild,
			Label:  rel.RelationshipType,
		})
	}

	return edges, nil
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
