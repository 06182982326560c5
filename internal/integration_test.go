package internal

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"yardgate-backend/config"
	"yardgate-backend/internal/db"
	"yardgate-backend/internal/model"
	"yardgate-backend/internal/storage"
	"yardgate-backend/internal/store"
)

// setupYard creates an in-memory SQLite database, migrates it, and seeds a
// single block "A" with the given bay geometry. The single-connection pool
// serializes transactions the way row locks do on postgres.
func setupYard(t *testing.T, name string, bays, maxRows, maxTiers int) (*gorm.DB, store.Store) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", name)
	testDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := testDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Migrate(testDB))
	require.NoError(t, db.SeedYard(testDB, &config.YardConfig{
		Blocks:              []string{"A"},
		BaysPerBlock:        bays,
		DefaultMaxDepthRows: maxRows,
		DefaultMaxTiers:     maxTiers,
	}))

	photos, err := storage.NewLocalStorage(t.TempDir(), "")
	require.NoError(t, err)

	return testDB, store.NewGormStore(testDB, photos, "Yard Gate Test", 10*time.Minute)
}

// TestContainerLifecycle walks one container through the full flow: gate in,
// move to another bay, print the ticket, and gate out, verifying the database
// state at each step.
func TestContainerLifecycle(t *testing.T) {
	ctx := context.Background()
	testDB, s := setupYard(t, "lifecycle", 2, 3, 2)

	var containerID, gateInMovementID int64

	t.Run("Gate In Takes The Deepest Row First", func(t *testing.T) {
		res, err := s.GateIn(ctx, "gate-operator", store.GateInRequest{
			ContainerCode: "MSCU-123456-7",
			Size:          "40HC",
			DriverName:    "J. Morales",
			TruckPlate:    "ABC-123",
			BlockCode:     "A",
			BayNumber:     1,
		})
		require.NoError(t, err)
		assert.Equal(t, store.PlacedSlot{BayCode: "A01", DepthRow: 3, Tier: 1}, res.Slot)
		containerID = res.ContainerID
		gateInMovementID = res.MovementID

		var c model.Container
		require.NoError(t, testDB.First(&c, containerID).Error)
		assert.True(t, c.IsInYard)

		var pos model.ContainerPosition
		require.NoError(t, testDB.Where("container_id = ?", containerID).First(&pos).Error)
		assert.Equal(t, 3, pos.DepthRow)
		assert.Equal(t, 1, pos.Tier)
	})

	t.Run("Suggestion Stacks On The Same Row Next", func(t *testing.T) {
		slot, err := s.BaySuggestion(ctx, "A01")
		require.NoError(t, err)
		assert.Equal(t, &store.PlacedSlot{BayCode: "A01", DepthRow: 3, Tier: 2}, slot)
	})

	t.Run("Duplicate Gate In Is Rejected", func(t *testing.T) {
		_, err := s.GateIn(ctx, "gate-operator", store.GateInRequest{
			ContainerCode: "MSCU-123456-7",
			Size:          "40HC",
			BlockCode:     "A",
			BayNumber:     2,
		})
		assert.ErrorIs(t, err, store.ErrContainerInYard)
	})

	t.Run("Move To Another Bay Releases The Old Slot", func(t *testing.T) {
		slot, err := s.PlaceContainer(ctx, "yard-planner", containerID, "A02", nil, store.OriginDragDrop)
		require.NoError(t, err)
		assert.Equal(t, &store.PlacedSlot{BayCode: "A02", DepthRow: 3, Tier: 1}, slot)

		// Exactly one position per container, now in A02.
		var count int64
		testDB.Model(&model.ContainerPosition{}).Where("container_id = ?", containerID).Count(&count)
		assert.Equal(t, int64(1), count)

		// The vacated slot is suggested again.
		suggestion, err := s.BaySuggestion(ctx, "A01")
		require.NoError(t, err)
		assert.Equal(t, 3, suggestion.DepthRow)
		assert.Equal(t, 1, suggestion.Tier)
	})

	t.Run("Ticket Print Enqueues A Job", func(t *testing.T) {
		res, err := s.PrintTicket(ctx, "gate-operator", gateInMovementID, "gate-ui")
		require.NoError(t, err)
		assert.Contains(t, res.Payload, "MSCU-123456-7")
		assert.Contains(t, res.Payload, "A01")

		var job model.PrintJob
		require.NoError(t, testDB.First(&job, res.PrintJobID).Error)
		assert.Equal(t, model.PrintStatusPending, job.Status)
		assert.Equal(t, res.Payload, job.PayloadText)

		// Reprint reuses the stored payload byte for byte.
		reprint, err := s.ReprintTicket(ctx, "gate-operator", res.TicketPrintID, "gate-ui")
		require.NoError(t, err)
		assert.True(t, reprint.IsReprint)
		assert.Equal(t, res.Payload, reprint.Payload)
		assert.NotEqual(t, res.PrintJobID, reprint.PrintJobID)
	})

	t.Run("Gate Out Snapshots The Last Position", func(t *testing.T) {
		res, err := s.GateOut(ctx, "gate-operator", store.GateOutRequest{
			ContainerID: containerID,
			DriverName:  "J. Morales",
			TruckPlate:  "ABC-123",
		})
		require.NoError(t, err)
		assert.Equal(t, "MSCU-123456-7", res.ContainerCode)
		assert.Equal(t, "A02", res.From.BayCode)

		var c model.Container
		require.NoError(t, testDB.First(&c, containerID).Error)
		assert.False(t, c.IsInYard)

		var posCount int64
		testDB.Model(&model.ContainerPosition{}).Where("container_id = ?", containerID).Count(&posCount)
		assert.Equal(t, int64(0), posCount)

		_, err = s.GateOut(ctx, "gate-operator", store.GateOutRequest{ContainerID: containerID})
		assert.ErrorIs(t, err, store.ErrContainerNotInYard)
	})

	t.Run("Movement History Mirrors The Lifecycle", func(t *testing.T) {
		var movements []model.Movement
		require.NoError(t, testDB.Where("container_id = ?", containerID).
			Order("id ASC").Find(&movements).Error)
		require.Len(t, movements, 3)
		assert.Equal(t, model.MovementGateIn, movements[0].MovementType)
		assert.Equal(t, model.MovementMove, movements[1].MovementType)
		assert.Equal(t, model.MovementGateOut, movements[2].MovementType)
		// The gate-out movement carries the position it left from.
		assert.Equal(t, "A02", movements[2].BayCode)
	})
}

// TestManualPlacementValidation covers the exact-slot path: collisions and
// out-of-range coordinates are rejected, valid free slots are honored.
func TestManualPlacementValidation(t *testing.T) {
	ctx := context.Background()
	_, s := setupYard(t, "manual", 1, 3, 2)

	first, err := s.GateIn(ctx, "op", store.GateInRequest{
		ContainerCode: "TGHU-000001-1",
		Size:          "20ST",
		BlockCode:     "A",
		BayNumber:     1,
		Manual:        &store.SlotRequest{DepthRow: 2, Tier: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, store.PlacedSlot{BayCode: "A01", DepthRow: 2, Tier: 1}, first.Slot)

	// Same slot again collides.
	_, err = s.GateIn(ctx, "op", store.GateInRequest{
		ContainerCode: "TGHU-000002-2",
		Size:          "20ST",
		BlockCode:     "A",
		BayNumber:     1,
		Manual:        &store.SlotRequest{DepthRow: 2, Tier: 1},
	})
	assert.ErrorIs(t, err, store.ErrSlotOccupied)

	// Coordinates beyond the bay geometry.
	_, err = s.GateIn(ctx, "op", store.GateInRequest{
		ContainerCode: "TGHU-000003-3",
		Size:          "20ST",
		BlockCode:     "A",
		BayNumber:     1,
		Manual:        &store.SlotRequest{DepthRow: 4, Tier: 1},
	})
	assert.ErrorIs(t, err, store.ErrOutOfRange)

	_, err = s.GateIn(ctx, "op", store.GateInRequest{
		ContainerCode: "TGHU-000003-3",
		Size:          "20ST",
		BlockCode:     "A",
		BayNumber:     1,
		Manual:        &store.SlotRequest{DepthRow: 1, Tier: 3},
	})
	assert.ErrorIs(t, err, store.ErrOutOfRange)

	// The row suggestion skips the occupied tier.
	slot, err := s.RowSuggestTier(ctx, "A01", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, slot.Tier)
}

// TestBayFillOrder drains a 2x2 bay through automatic placement and checks
// the deepest-row-first, lowest-tier-first order, then the full-bay rejection.
func TestBayFillOrder(t *testing.T) {
	ctx := context.Background()
	_, s := setupYard(t, "fillorder", 1, 2, 2)

	want := []store.PlacedSlot{
		{BayCode: "A01", DepthRow: 2, Tier: 1},
		{BayCode: "A01", DepthRow: 2, Tier: 2},
		{BayCode: "A01", DepthRow: 1, Tier: 1},
		{BayCode: "A01", DepthRow: 1, Tier: 2},
	}
	for i, expected := range want {
		res, err := s.GateIn(ctx, "op", store.GateInRequest{
			ContainerCode: fmt.Sprintf("FILL-%06d-%d", i, i),
			Size:          "40ST",
			BlockCode:     "A",
			BayNumber:     1,
		})
		require.NoError(t, err)
		assert.Equal(t, expected, res.Slot, "arrival %d", i)
	}

	_, err := s.GateIn(ctx, "op", store.GateInRequest{
		ContainerCode: "FILL-999999-9",
		Size:          "40ST",
		BlockCode:     "A",
		BayNumber:     1,
	})
	assert.ErrorIs(t, err, store.ErrBayFull)
}

// TestConcurrentGateIns fires simultaneous arrivals at one bay and verifies
// no slot is ever handed out twice.
func TestConcurrentGateIns(t *testing.T) {
	ctx := context.Background()
	testDB, s := setupYard(t, "concurrent", 1, 3, 2)

	const arrivals = 6 // exactly the bay's capacity

	var wg sync.WaitGroup
	errs := make([]error, arrivals)
	for i := 0; i < arrivals; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.GateIn(ctx, "op", store.GateInRequest{
				ContainerCode: fmt.Sprintf("CONC-%06d-%d", i, i),
				Size:          "20ST",
				BlockCode:     "A",
				BayNumber:     1,
			})
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err, "arrival %d", i)
	}

	var positions []model.ContainerPosition
	require.NoError(t, testDB.Find(&positions).Error)
	require.Len(t, positions, arrivals)

	seen := make(map[[2]int]bool)
	for _, p := range positions {
		slot := [2]int{p.DepthRow, p.Tier}
		assert.False(t, seen[slot], "slot (%d,%d) handed out twice", p.DepthRow, p.Tier)
		seen[slot] = true
	}
}

// TestPrintQueue covers the claim protocol: oldest-first delivery, exactly one
// winner under concurrent polling, lease-expiry reclaim, and the terminal
// transitions.
func TestPrintQueue(t *testing.T) {
	ctx := context.Background()
	testDB, s := setupYard(t, "printqueue", 1, 2, 2)

	t.Run("Claims Are Ordered Oldest First", func(t *testing.T) {
		firstID, err := s.EnqueuePrintJob(ctx, store.EnqueueRequest{PayloadText: "TICKET 1", RequestedBy: "op"})
		require.NoError(t, err)
		secondID, err := s.EnqueuePrintJob(ctx, store.EnqueueRequest{PayloadText: "TICKET 2", RequestedBy: "op"})
		require.NoError(t, err)

		job, err := s.ClaimNextPrintJob(ctx, "GATE-PC-01")
		require.NoError(t, err)
		require.NotNil(t, job)
		assert.Equal(t, firstID, job.ID)

		job, err = s.ClaimNextPrintJob(ctx, "GATE-PC-01")
		require.NoError(t, err)
		require.NotNil(t, job)
		assert.Equal(t, secondID, job.ID)

		// Both are leased now; nothing left to claim.
		job, err = s.ClaimNextPrintJob(ctx, "GATE-PC-02")
		require.NoError(t, err)
		assert.Nil(t, job)

		require.NoError(t, s.CompletePrintJob(ctx, firstID, true, ""))
		require.NoError(t, s.CompletePrintJob(ctx, secondID, false, "printer offline"))

		var done, failed model.PrintJob
		require.NoError(t, testDB.First(&done, firstID).Error)
		assert.Equal(t, model.PrintStatusDone, done.Status)
		assert.NotNil(t, done.PrintedAt)

		require.NoError(t, testDB.First(&failed, secondID).Error)
		assert.Equal(t, model.PrintStatusFailed, failed.Status)
		assert.Equal(t, "printer offline", failed.LastError)
	})

	t.Run("Concurrent Claimers Get Exactly One Winner", func(t *testing.T) {
		jobID, err := s.EnqueuePrintJob(ctx, store.EnqueueRequest{PayloadText: "RACE TICKET"})
		require.NoError(t, err)

		const claimers = 8
		var wg sync.WaitGroup
		claimed := make([]*store.ClaimedJob, claimers)
		for i := 0; i < claimers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				job, err := s.ClaimNextPrintJob(ctx, fmt.Sprintf("GATE-PC-%02d", i))
				assert.NoError(t, err)
				claimed[i] = job
			}(i)
		}
		wg.Wait()

		winners := 0
		for _, job := range claimed {
			if job != nil {
				winners++
				assert.Equal(t, jobID, job.ID)
			}
		}
		assert.Equal(t, 1, winners)

		var job model.PrintJob
		require.NoError(t, testDB.First(&job, jobID).Error)
		assert.Equal(t, model.PrintStatusClaimed, job.Status)
		assert.Equal(t, 1, job.Attempts)

		require.NoError(t, s.CompletePrintJob(ctx, jobID, true, ""))
	})

	t.Run("Expired Lease Is Claimed Again", func(t *testing.T) {
		jobID, err := s.EnqueuePrintJob(ctx, store.EnqueueRequest{PayloadText: "STUCK TICKET"})
		require.NoError(t, err)

		job, err := s.ClaimNextPrintJob(ctx, "GATE-PC-01")
		require.NoError(t, err)
		require.NotNil(t, job)

		// A fresh lease shields the job from other agents.
		job, err = s.ClaimNextPrintJob(ctx, "GATE-PC-02")
		require.NoError(t, err)
		assert.Nil(t, job)

		// Simulate the first agent crashing mid-print: age the lease past
		// the 10-minute window.
		stale := time.Now().UTC().Add(-20 * time.Minute)
		require.NoError(t, testDB.Model(&model.PrintJob{}).
			Where("id = ?", jobID).Update("claimed_at", stale).Error)

		job, err = s.ClaimNextPrintJob(ctx, "GATE-PC-02")
		require.NoError(t, err)
		require.NotNil(t, job)
		assert.Equal(t, jobID, job.ID)

		var row model.PrintJob
		require.NoError(t, testDB.First(&row, jobID).Error)
		assert.Equal(t, "GATE-PC-02", row.ClaimedBy)
		assert.Equal(t, 2, row.Attempts)
	})
}

// failingStorage simulates an unreachable photo backend.
type failingStorage struct{}

func (failingStorage) Store(ctx context.Context, r io.Reader, size int64, key, contentType string) (string, error) {
	return "", fmt.Errorf("bucket unreachable")
}

// TestGatePhotos verifies that photos are persisted alongside the movement
// and that an upload failure never blocks the gate.
func TestGatePhotos(t *testing.T) {
	ctx := context.Background()
	testDB, s := setupYard(t, "photos", 1, 2, 2)

	photo := func() store.PhotoUpload {
		data := []byte("not-really-a-jpeg")
		return store.PhotoUpload{
			Reader:      bytes.NewReader(data),
			Size:        int64(len(data)),
			Filename:    "front.jpg",
			ContentType: "image/jpeg",
		}
	}

	t.Run("Photos Stored With The Movement", func(t *testing.T) {
		res, err := s.GateIn(ctx, "op", store.GateInRequest{
			ContainerCode: "PHOT-000001-1",
			Size:          "40HC",
			BlockCode:     "A",
			BayNumber:     1,
			Photos:        []store.PhotoUpload{photo()},
		})
		require.NoError(t, err)

		var rows []model.MovementPhoto
		require.NoError(t, testDB.Where("movement_id = ?", res.MovementID).Find(&rows).Error)
		require.Len(t, rows, 1)
		assert.Equal(t, model.PhotoContainer, rows[0].PhotoType)
		assert.NotEmpty(t, rows[0].URL)
	})

	t.Run("Upload Failure Is Tolerated", func(t *testing.T) {
		broken := store.NewGormStore(testDB, failingStorage{}, "Yard Gate Test", 10*time.Minute)

		res, err := broken.GateIn(ctx, "op", store.GateInRequest{
			ContainerCode: "PHOT-000002-2",
			Size:          "40HC",
			BlockCode:     "A",
			BayNumber:     1,
			Photos:        []store.PhotoUpload{photo()},
		})
		require.NoError(t, err, "a dead photo backend must not block the gate")

		var rows []model.MovementPhoto
		require.NoError(t, testDB.Where("movement_id = ?", res.MovementID).Find(&rows).Error)
		require.Len(t, rows, 1)
		assert.Equal(t, model.PhotoUploadError, rows[0].PhotoType)
		assert.Contains(t, rows[0].URL, "bucket unreachable")
	})
}

// TestReportsAndInventory checks the joined report rows, the audit trail the
// report run leaves behind, and the inventory filters.
func TestReportsAndInventory(t *testing.T) {
	ctx := context.Background()
	testDB, s := setupYard(t, "reports", 1, 2, 2)

	in, err := s.GateIn(ctx, "op", store.GateInRequest{
		ContainerCode: "REPT-000001-1",
		Size:          "45ST",
		BlockCode:     "A",
		BayNumber:     1,
	})
	require.NoError(t, err)
	_, err = s.GateOut(ctx, "op", store.GateOutRequest{ContainerID: in.ContainerID})
	require.NoError(t, err)

	_, err = s.GateIn(ctx, "op", store.GateInRequest{
		ContainerCode: "REPT-000002-2",
		Size:          "20ST",
		BlockCode:     "A",
		BayNumber:     1,
	})
	require.NoError(t, err)

	t.Run("Report Joins Containers And Filters By Type", func(t *testing.T) {
		now := time.Now().UTC()
		rows, err := s.MovementReport(ctx, "supervisor", store.ReportFilter{
			From: now.Add(-time.Hour),
			To:   now.Add(time.Hour),
		}, false)
		require.NoError(t, err)
		assert.Len(t, rows, 3)

		rows, err = s.MovementReport(ctx, "supervisor", store.ReportFilter{
			MovementType: model.MovementGateOut,
			From:         now.Add(-time.Hour),
			To:           now.Add(time.Hour),
		}, true)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "REPT-000001-1", rows[0].ContainerCode)

		_, err = s.MovementReport(ctx, "supervisor", store.ReportFilter{
			From: now, To: now.Add(-time.Hour),
		}, false)
		assert.ErrorIs(t, err, store.ErrInvalidDateRange)

		var audits int64
		testDB.Model(&model.AuditLog{}).Where("action IN ?",
			[]string{"REPORT_RUN", "REPORT_EXPORTED"}).Count(&audits)
		assert.Equal(t, int64(2), audits)
	})

	t.Run("Inventory Filters By Presence And Code", func(t *testing.T) {
		inYard := true
		rows, err := s.Inventory(ctx, store.InventoryFilter{InYard: &inYard})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "REPT-000002-2", rows[0].Code)
		require.NotNil(t, rows[0].Position)
		assert.Equal(t, "A01", rows[0].Position.BayCode)

		rows, err = s.Inventory(ctx, store.InventoryFilter{CodeSearch: "rept-000001"})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.False(t, rows[0].IsInYard)
		assert.Nil(t, rows[0].Position)
	})
}
