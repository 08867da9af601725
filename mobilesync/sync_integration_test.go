package mobilesync_test

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"testing"
	"time"

	"bitbucket.org/mmagritech/farm_backend/config"
	"bitbucket.org/mmagritech/farm_backend/mobilesync"
	"bitbucket.org/mmagritech/farm_backend/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// End-to-end reconciliation harness against a real MySQL.
//
// Usage (requires Docker):
//   INTEGRATION_TESTS=1 go test ./mobilesync -run PushPullSync -v

func TestPushPullSync_EndToEnd(t *testing.T) {
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	ctx := context.Background()

	mysqlName, mysqlPort := startMySQLContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(mysqlName) })

	// Wire env for config.Connect* helpers.
	t.Setenv("DB_USER", "root")
	t.Setenv("DB_PASSWORD", "testpw")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", mysqlPort)
	t.Setenv("DB_NAME", "farm_backend_test")
	t.Setenv("SYNC_NOTIFICATIONS", "")

	config.ConnectDatabaseWithRetry()
	models.MigrateTable()
	db := config.GetDB()
	if db == nil {
		t.Fatalf("db is nil after ConnectDatabaseWithRetry")
	}

	farmer1 := createUser(t, db, "mgmg", models.RoleFarmer)
	farmer2 := createUser(t, db, "kokyaw", models.RoleFarmer)
	vet := createUser(t, db, "drhla", models.RoleVet)

	// Locking is a liveness concern only; the engine runs without redis.
	engine := mobilesync.NewEngine(db, logrus.New(), nil, nil)

	actor1 := mobilesync.Actor{ID: farmer1, Role: string(models.RoleFarmer)}
	actor2 := mobilesync.Actor{ID: farmer2, Role: string(models.RoleFarmer)}
	vetActor := mobilesync.Actor{ID: vet, Role: string(models.RoleVet)}

	base := time.Date(2026, 2, 1, 6, 0, 0, 0, time.UTC)

	fullPush := mobilesync.PushRequest{
		DeviceId: "device-a",
		EntityBatches: map[mobilesync.EntityType][]map[string]any{
			mobilesync.EntityFarms: {{
				"clientId":        "farm-a",
				"clientCreatedAt": base.Format(time.RFC3339),
				"clientUpdatedAt": base.Format(time.RFC3339),
				"name":            "Ayeyar Farm",
			}},
			mobilesync.EntitySheds: {{
				"clientId":        "shed-a",
				"farmClientId":    "farm-a",
				"clientCreatedAt": base.Format(time.RFC3339),
				"clientUpdatedAt": base.Format(time.RFC3339),
				"name":            "Shed 1",
			}},
			mobilesync.EntityLivestock: {{
				"clientId":        "cow-a",
				"farmClientId":    "farm-a",
				"shedClientId":    "shed-a",
				"clientCreatedAt": base.Format(time.RFC3339),
				"clientUpdatedAt": base.Format(time.RFC3339),
				"tagNumber":       "T-001",
				"species":         "cattle",
			}},
			mobilesync.EntityWeights: {{
				"clientId":          "weight-a",
				"livestockClientId": "cow-a",
				"clientCreatedAt":   base.Format(time.RFC3339),
				"clientUpdatedAt":   base.Format(time.RFC3339),
				"eventDate":         base.Format(time.RFC3339),
				"weightKg":          "182.5",
			}},
		},
	}

	t.Run("single push resolves in-batch references", func(t *testing.T) {
		res, err := engine.PushSync(ctx, actor1, fullPush)
		if err != nil {
			t.Fatalf("PushSync: %v", err)
		}
		for _, et := range []mobilesync.EntityType{
			mobilesync.EntityFarms, mobilesync.EntitySheds,
			mobilesync.EntityLivestock, mobilesync.EntityWeights,
		} {
			if len(res[et]) != 1 {
				t.Fatalf("%s: accepted %d records, expected 1", et, len(res[et]))
			}
		}

		var cow models.Livestock
		if err := db.Where("client_id = ?", "cow-a").First(&cow).Error; err != nil {
			t.Fatalf("fetch cow: %v", err)
		}
		if cow.FarmerId != farmer1 {
			t.Fatalf("cow farmer_id = %d, expected %d", cow.FarmerId, farmer1)
		}
		if cow.ShedId == nil {
			t.Fatalf("shed resolved in the same push must be linked")
		}
		var w models.Weight
		if err := db.Where("client_id = ?", "weight-a").First(&w).Error; err != nil {
			t.Fatalf("fetch weight: %v", err)
		}
		if w.LivestockId != cow.ID || w.FarmId != cow.FarmId {
			t.Fatalf("weight ownership: livestock=%d farm=%d, cow=%d/%d", w.LivestockId, w.FarmId, cow.ID, cow.FarmId)
		}
	})

	t.Run("replaying the same push is idempotent", func(t *testing.T) {
		res, err := engine.PushSync(ctx, actor1, fullPush)
		if err != nil {
			t.Fatalf("PushSync replay: %v", err)
		}
		if len(res[mobilesync.EntityLivestock]) != 1 {
			t.Fatalf("replay must re-accept: %+v", res[mobilesync.EntityLivestock])
		}
		if n := countRows(t, db, &models.Livestock{}, "client_id = ?", "cow-a"); n != 1 {
			t.Fatalf("replay duplicated the row: %d", n)
		}
	})

	t.Run("stale update is accepted but not applied", func(t *testing.T) {
		push := singleRecordPush("device-a", mobilesync.EntityLivestock, map[string]any{
			"clientId":        "cow-a",
			"syncAction":      "update",
			"farmClientId":    "farm-a",
			"clientCreatedAt": base.Format(time.RFC3339),
			"clientUpdatedAt": base.Add(-time.Hour).Format(time.RFC3339),
			"tagNumber":       "T-STALE",
			"species":         "cattle",
		})
		res, err := engine.PushSync(ctx, actor1, push)
		if err != nil {
			t.Fatalf("PushSync: %v", err)
		}
		if len(res[mobilesync.EntityLivestock]) != 1 {
			t.Fatalf("stale writes are still acknowledged")
		}
		var cow models.Livestock
		if err := db.Where("client_id = ?", "cow-a").First(&cow).Error; err != nil {
			t.Fatalf("fetch cow: %v", err)
		}
		if cow.TagNumber != "T-001" {
			t.Fatalf("stale update overwrote tag: %q", cow.TagNumber)
		}

		// A strictly newer edit wins regardless of arrival order.
		push = singleRecordPush("device-a", mobilesync.EntityLivestock, map[string]any{
			"clientId":        "cow-a",
			"syncAction":      "update",
			"farmClientId":    "farm-a",
			"clientCreatedAt": base.Format(time.RFC3339),
			"clientUpdatedAt": base.Add(time.Hour).Format(time.RFC3339),
			"tagNumber":       "T-002",
			"species":         "cattle",
		})
		if _, err := engine.PushSync(ctx, actor1, push); err != nil {
			t.Fatalf("PushSync: %v", err)
		}
		if err := db.Where("client_id = ?", "cow-a").First(&cow).Error; err != nil {
			t.Fatalf("fetch cow: %v", err)
		}
		if cow.TagNumber != "T-002" {
			t.Fatalf("newer update did not apply: %q", cow.TagNumber)
		}
	})

	t.Run("unresolved animal reference is rejected in isolation", func(t *testing.T) {
		push := mobilesync.PushRequest{
			DeviceId: "device-a",
			EntityBatches: map[mobilesync.EntityType][]map[string]any{
				mobilesync.EntityWeights: {
					{
						"clientId":          "weight-orphan",
						"livestockClientId": "no-such-cow",
						"clientUpdatedAt":   base.Format(time.RFC3339),
						"weightKg":          "50",
					},
					{
						"clientId":          "weight-b",
						"livestockClientId": "cow-a",
						"clientUpdatedAt":   base.Format(time.RFC3339),
						"weightKg":          "60",
					},
				},
			},
		}
		res, err := engine.PushSync(ctx, actor1, push)
		if err != nil {
			t.Fatalf("PushSync: %v", err)
		}
		ids := res[mobilesync.EntityWeights]
		if len(ids) != 1 || ids[0].ClientId != "weight-b" {
			t.Fatalf("expected only weight-b accepted: %+v", ids)
		}
		if n := countRows(t, db, &models.Weight{}, "client_id = ?", "weight-orphan"); n != 0 {
			t.Fatalf("orphan weight persisted")
		}
		if n := countRows(t, db, &models.SyncError{}, "client_id = ?", "weight-orphan"); n != 1 {
			t.Fatalf("rejection not audited: %d rows", n)
		}
	})

	t.Run("update of a missing record is an accepted no-op", func(t *testing.T) {
		push := singleRecordPush("device-a", mobilesync.EntitySheds, map[string]any{
			"clientId":        "shed-ghost",
			"syncAction":      "update",
			"farmClientId":    "farm-a",
			"clientUpdatedAt": base.Format(time.RFC3339),
			"name":            "Ghost Shed",
		})
		res, err := engine.PushSync(ctx, actor1, push)
		if err != nil {
			t.Fatalf("PushSync: %v", err)
		}
		if len(res[mobilesync.EntitySheds]) != 1 {
			t.Fatalf("update-of-missing must still be acknowledged")
		}
		if n := countRows(t, db, &models.Shed{}, "client_id = ?", "shed-ghost"); n != 0 {
			t.Fatalf("update-of-missing created a row")
		}
	})

	t.Run("deletes are idempotent and soft for livestock", func(t *testing.T) {
		del := map[string]any{
			"clientId":        "cow-a",
			"syncAction":      "deleted",
			"clientUpdatedAt": base.Add(2 * time.Hour).Format(time.RFC3339),
		}
		for i := 0; i < 2; i++ {
			res, err := engine.PushSync(ctx, actor1, singleRecordPush("device-a", mobilesync.EntityLivestock, del))
			if err != nil {
				t.Fatalf("PushSync delete #%d: %v", i+1, err)
			}
			if len(res[mobilesync.EntityLivestock]) != 1 {
				t.Fatalf("delete #%d not acknowledged", i+1)
			}
		}
		var cow models.Livestock
		if err := db.Where("client_id = ?", "cow-a").First(&cow).Error; err != nil {
			t.Fatalf("soft-deleted cow must remain: %v", err)
		}
		if cow.Status != models.LivestockStatusRemoved {
			t.Fatalf("cow status = %q, expected removed", cow.Status)
		}
		// Deleting something that never existed is also fine.
		res, err := engine.PushSync(ctx, actor1, singleRecordPush("device-a", mobilesync.EntitySheds, map[string]any{
			"clientId":   "shed-never",
			"syncAction": "deleted",
		}))
		if err != nil {
			t.Fatalf("PushSync: %v", err)
		}
		if len(res[mobilesync.EntitySheds]) != 1 {
			t.Fatalf("delete of unknown record must be acknowledged")
		}
	})

	t.Run("foreign farm reference falls back to the home farm", func(t *testing.T) {
		if _, err := engine.PushSync(ctx, actor2, singleRecordPush("device-b", mobilesync.EntityFarms, map[string]any{
			"clientId": "farm-b",
			"name":     "Kyaw Farm",
		})); err != nil {
			t.Fatalf("PushSync farmer2: %v", err)
		}

		res, err := engine.PushSync(ctx, actor1, singleRecordPush("device-a", mobilesync.EntitySheds, map[string]any{
			"clientId":        "shed-stray",
			"farmClientId":    "farm-b",
			"clientUpdatedAt": base.Format(time.RFC3339),
			"name":            "Stray Shed",
		}))
		if err != nil {
			t.Fatalf("PushSync: %v", err)
		}
		if len(res[mobilesync.EntitySheds]) != 1 {
			t.Fatalf("overridden record must be accepted")
		}
		var shed models.Shed
		if err := db.Where("client_id = ?", "shed-stray").First(&shed).Error; err != nil {
			t.Fatalf("fetch shed: %v", err)
		}
		var home models.Farm
		if err := db.Where("client_id = ?", "farm-a").First(&home).Error; err != nil {
			t.Fatalf("fetch home farm: %v", err)
		}
		if shed.FarmId != home.ID {
			t.Fatalf("stray shed landed on farm %d, expected home farm %d", shed.FarmId, home.ID)
		}
	})

	t.Run("another farmer's animal is out of reach", func(t *testing.T) {
		res, err := engine.PushSync(ctx, actor2, singleRecordPush("device-b", mobilesync.EntityWeights, map[string]any{
			"clientId":          "weight-cross",
			"livestockClientId": "cow-a",
			"weightKg":          "99",
		}))
		if err != nil {
			t.Fatalf("PushSync: %v", err)
		}
		if len(res[mobilesync.EntityWeights]) != 0 {
			t.Fatalf("cross-farmer animal reference must be rejected: %+v", res[mobilesync.EntityWeights])
		}
	})

	t.Run("vets push health events only", func(t *testing.T) {
		var farmA models.Farm
		if err := db.Where("client_id = ?", "farm-a").First(&farmA).Error; err != nil {
			t.Fatalf("fetch farm: %v", err)
		}
		if err := db.Create(&models.FarmAssignment{FarmId: farmA.ID, UserId: vet}).Error; err != nil {
			t.Fatalf("assign vet: %v", err)
		}

		// Re-activate the cow so the health record targets a live animal.
		if _, err := engine.PushSync(ctx, actor1, singleRecordPush("device-a", mobilesync.EntityLivestock, map[string]any{
			"clientId":        "cow-a",
			"syncAction":      "update",
			"farmClientId":    "farm-a",
			"clientUpdatedAt": base.Add(3 * time.Hour).Format(time.RFC3339),
			"tagNumber":       "T-002",
			"species":         "cattle",
			"status":          "active",
		})); err != nil {
			t.Fatalf("PushSync reactivate: %v", err)
		}

		push := mobilesync.PushRequest{
			DeviceId: "device-vet",
			EntityBatches: map[mobilesync.EntityType][]map[string]any{
				mobilesync.EntityFarms: {{
					"clientId": "farm-vet",
					"name":     "Vet Farm",
				}},
				mobilesync.EntityTreatments: {{
					"clientId":          "treat-1",
					"livestockClientId": "cow-a",
					"clientUpdatedAt":   base.Format(time.RFC3339),
					"diagnosis":         "foot rot",
				}},
			},
		}
		res, err := engine.PushSync(ctx, vetActor, push)
		if err != nil {
			t.Fatalf("PushSync vet: %v", err)
		}
		if ids, ok := res[mobilesync.EntityFarms]; !ok || len(ids) != 0 {
			t.Fatalf("vet farm push must be dropped with an empty list: %+v", ids)
		}
		if len(res[mobilesync.EntityTreatments]) != 1 {
			t.Fatalf("vet treatment on assigned farm must be accepted: %+v", res[mobilesync.EntityTreatments])
		}
		var treat models.Treatment
		if err := db.Where("client_id = ?", "treat-1").First(&treat).Error; err != nil {
			t.Fatalf("fetch treatment: %v", err)
		}
		if treat.FarmerId != farmer1 {
			t.Fatalf("treatment must belong to the farm's owner, got farmer %d", treat.FarmerId)
		}
	})

	t.Run("pull is scoped per actor", func(t *testing.T) {
		snap1, err := engine.PullSync(ctx, actor1, "device-a")
		if err != nil {
			t.Fatalf("PullSync farmer1: %v", err)
		}
		if len(snap1[mobilesync.EntityFarms]) != 1 {
			t.Fatalf("farmer1 farms: %d", len(snap1[mobilesync.EntityFarms]))
		}
		if len(snap1[mobilesync.EntityLivestock]) != 1 {
			t.Fatalf("farmer1 livestock: %d", len(snap1[mobilesync.EntityLivestock]))
		}
		cow := snap1[mobilesync.EntityLivestock][0]
		if cow["farmClientId"] != "farm-a" || cow["shedClientId"] != "shed-a" {
			t.Fatalf("pull refs: %v / %v", cow["farmClientId"], cow["shedClientId"])
		}

		snap2, err := engine.PullSync(ctx, actor2, "device-b")
		if err != nil {
			t.Fatalf("PullSync farmer2: %v", err)
		}
		for _, row := range snap2[mobilesync.EntityFarms] {
			if row["clientId"] == "farm-a" {
				t.Fatalf("farmer2 pulled farmer1's farm")
			}
		}
		if len(snap2[mobilesync.EntityLivestock]) != 0 {
			t.Fatalf("farmer2 livestock: %+v", snap2[mobilesync.EntityLivestock])
		}
	})

	t.Run("in-batch duplicate resolves by timestamp, not arrival order", func(t *testing.T) {
		push := mobilesync.PushRequest{
			DeviceId: "device-b",
			EntityBatches: map[mobilesync.EntityType][]map[string]any{
				mobilesync.EntityLivestock: {
					{
						"clientId":        "cow-dup",
						"farmClientId":    "farm-b",
						"clientUpdatedAt": base.Add(2 * time.Hour).Format(time.RFC3339),
						"tagNumber":       "T-NEW",
						"species":         "goat",
					},
					{
						"clientId":        "cow-dup",
						"farmClientId":    "farm-b",
						"clientUpdatedAt": base.Add(time.Hour).Format(time.RFC3339),
						"tagNumber":       "T-OLD",
						"species":         "goat",
					},
				},
			},
		}
		res, err := engine.PushSync(ctx, actor2, push)
		if err != nil {
			t.Fatalf("PushSync: %v", err)
		}
		if len(res[mobilesync.EntityLivestock]) != 2 {
			t.Fatalf("both duplicates must be acknowledged: %+v", res[mobilesync.EntityLivestock])
		}
		if n := countRows(t, db, &models.Livestock{}, "client_id = ?", "cow-dup"); n != 1 {
			t.Fatalf("duplicate clientId produced %d rows", n)
		}
		var dup models.Livestock
		if err := db.Where("client_id = ?", "cow-dup").First(&dup).Error; err != nil {
			t.Fatalf("fetch dup: %v", err)
		}
		if dup.TagNumber != "T-NEW" {
			t.Fatalf("later-timestamped edit must win: %q", dup.TagNumber)
		}
	})

	t.Run("push runs are audited", func(t *testing.T) {
		runs, err := models.GetRecentSyncRuns(ctx, farmer1, 50)
		if err != nil {
			t.Fatalf("GetRecentSyncRuns: %v", err)
		}
		if len(runs) == 0 {
			t.Fatalf("no sync runs recorded")
		}
		latest := runs[0]
		if latest.Status == models.SyncRunStatusRunning {
			t.Fatalf("latest run never finalized: %+v", latest)
		}
	})
}

func createUser(t *testing.T, db *gorm.DB, username string, role models.UserRole) int {
	t.Helper()
	u := models.User{
		Username: username,
		Name:     username,
		Password: "x",
		Role:     role,
	}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return u.ID
}

func singleRecordPush(deviceId string, et mobilesync.EntityType, rec map[string]any) mobilesync.PushRequest {
	return mobilesync.PushRequest{
		DeviceId: deviceId,
		EntityBatches: map[mobilesync.EntityType][]map[string]any{
			et: {rec},
		},
	}
}

func countRows(t *testing.T, db *gorm.DB, model any, query string, args ...any) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Where(query, args...).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func startMySQLContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("farm-test-mysql-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-e", "MYSQL_ROOT_PASSWORD=testpw",
		"-e", "MYSQL_DATABASE=farm_backend_test",
		"-p", "127.0.0.1:0:3306",
		"mysql:8.0",
		"--default-authentication-plugin=mysql_native_password",
	)
	if err != nil {
		t.Fatalf("start mysql container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "3306/tcp")
	if err != nil {
		t.Fatalf("mysql docker port: %v", err)
	}
	deadline := time.Now().Add(120 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "mysqladmin", "ping", "-h", "127.0.0.1", "-ptestpw", "--silent")
		if err == nil {
			return name, port
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("mysql did not become ready")
	return "", ""
}

func dockerHostPort(container, portProto string) (string, error) {
	out, err := dockerRun("port", container, portProto)
	if err != nil {
		return "", fmt.Errorf("docker port: %w: %s", err, out)
	}
	re := regexp.MustCompile(`:(\d+)`)
	m := re.FindStringSubmatch(out)
	if len(m) != 2 {
		return "", fmt.Errorf("unexpected docker port output: %q", out)
	}
	return m[1], nil
}

func dockerRmForce(container string) error {
	if strings.TrimSpace(container) == "" {
		return nil
	}
	_, err := dockerRun("rm", "-f", container)
	return err
}

func dockerRun(args ...string) (string, error) {
	cmd := exec.Command("docker", args...)
	b, err := cmd.CombinedOutput()
	return string(b), err
}
