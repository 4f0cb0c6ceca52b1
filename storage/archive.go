package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/EricBrvs/ft-transcendance/models"
)

// BracketArchive writes the final bracket of a completed tournament to
// object storage as a JSON document, one object per tournament.
type BracketArchive struct {
	uploader FileUploader
}

func NewBracketArchive(uploader FileUploader) *BracketArchive {
	return &BracketArchive{uploader: uploader}
}

type archiveDocument struct {
	Tournament *models.Tournament `json:"tournament"`
	Matches    []*models.Match    `json:"matches"`
}

func (a *BracketArchive) ArchiveTournament(ctx context.Context, tournament *models.Tournament, matches []*models.Match) error {
	doc := archiveDocument{Tournament: tournament, Matches: matches}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode archive for tournament %s: %w", tournament.ID, err)
	}

	result, err := a.uploader.Upload(ctx, archiveKey(tournament.ID), "application/json", bytes.NewReader(data))
	if err != nil {
		return err
	}

	log.Printf("archive: tournament %s stored at %s", tournament.ID, result.Location)
	return nil
}

// RemoveTournament deletes the archived bracket document of a tournament,
// used when a host's tournaments are cascade-deleted.
func (a *BracketArchive) RemoveTournament(ctx context.Context, tournamentID string) error {
	return a.uploader.Delete(ctx, archiveKey(tournamentID))
}

func archiveKey(tournamentID string) string {
	return fmt.Sprintf("tournaments/%s.json", tournamentID)
}
