package app

import (
	"context"
	"fmt"
	"time"

	"github.com/samvad-hq/samvad-social-ingestor/internal/config"
	"github.com/samvad-hq/samvad-social-ingestor/internal/logger"
	"github.com/samvad-hq/samvad-social-ingestor/internal/metrics"
	"github.com/samvad-hq/samvad-social-ingestor/internal/storage"
	"github.com/samvad-hq/samvad-social-ingestor/internal/tasks"
	"github.com/samvad-hq/samvad-social-ingestor/internal/worker"
	"github.com/samvad-hq/samvad-social-ingestor/pkg/accounts"
	"github.com/samvad-hq/samvad-social-ingestor/pkg/collectors"
	"github.com/samvad-hq/samvad-social-ingestor/pkg/publishers"
	"github.com/samvad-hq/samvad-social-ingestor/pkg/scrapejob"
)

// Ingestor is the ingestion runtime. It wires the scrape-job client, the
// platform collectors, storage, the event fanout, and the task machinery,
// and exposes the scheduling facade consumed by the service loop and any
// outer transport layer.
type Ingestor struct {
	cfg      *config.Config
	log      logger.Logger
	store    storage.Store
	jobs     *scrapejob.Client
	accounts accounts.Resolver
	fanout   *publishers.Fanout
	registry *collectors.Registry
	tasks    *tasks.Registry
	pool     *worker.Pool
}

// NewIngestor builds the runtime from config files.
func NewIngestor(ctx context.Context, cfg *config.Config, log logger.Logger) (*Ingestor, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	metrics.MustRegister()

	if err := accounts.LoadAccounts(cfg.AccountsFile); err != nil {
		return nil, fmt.Errorf("load accounts registry: %w", err)
	}
	accountList := accounts.Accounts()
	accountIDs := make([]string, 0, len(accountList))
	for _, a := range accountList {
		accountIDs = append(accountIDs, a.ID)
	}
	log.InfoObj("accounts registry loaded", "accounts_meta", map[string]any{
		"count": len(accountIDs),
		"ids":   accountIDs,
	})

	publisherReg, err := publishers.LoadRegistry(cfg.PublishersFile)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}
	enabledPublishers := publisherReg.Enabled()
	if len(enabledPublishers) == 0 {
		return nil, fmt.Errorf("no publishers configured")
	}

	pubRegistry := publishers.DefaultRegistry()
	pubClients, err := publishers.BuildAll(ctx, pubRegistry, enabledPublishers, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}
	fanout := publishers.NewFanout(pubClients)
	publisherSummaries := make([]map[string]string, 0, len(enabledPublishers))
	for _, pubCfg := range enabledPublishers {
		publisherSummaries = append(publisherSummaries, map[string]string{
			"id":   pubCfg.ID,
			"type": pubCfg.Type,
		})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(publisherSummaries),
		"publishers": publisherSummaries,
	})

	store, err := storage.NewStore(storage.Options{
		Type:      cfg.StorageType,
		BBoltPath: cfg.BBoltPath,
	})
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type": cfg.StorageType,
		"path": cfg.BBoltPath,
	})

	jobs := scrapejob.New(scrapejob.Config{
		BaseURL:        cfg.ScrapeAPIBaseURL,
		Token:          cfg.ScrapeAPIToken,
		MinInterval:    cfg.ScrapeMinInterval,
		RetryAttempts:  cfg.ScrapeRetryAttempts,
		RetryBase:      cfg.ScrapeRetryBase,
		PollInterval:   cfg.ScrapePollInterval,
		MaxWait:        cfg.ScrapeMaxWait,
		RequestTimeout: cfg.ScrapeRequestTimeout,
		Log:            log,
		Observer:       metrics.JobObserver{},
	})

	resolver := accounts.RegistryResolver{}
	deps := collectors.Deps{
		Jobs:     jobs,
		Store:    store,
		Accounts: resolver,
		Events:   fanout,
		Log:      log,
		Settings: collectors.Settings{
			MaxPosts:        cfg.MaxPosts,
			MaxComments:     cfg.MaxComments,
			DefaultDaysBack: cfg.DefaultDaysBack,
		},
	}
	registry := collectors.DefaultRegistry(deps, collectors.ActorIDs{
		Twitter:       cfg.TwitterActorID,
		Instagram:     cfg.InstagramActorID,
		Facebook:      cfg.FacebookActorID,
		TikTok:        cfg.TikTokActorID,
		TikTokPost:    cfg.TikTokPostActor,
		TikTokComment: cfg.TikTokCmtActor,
	})

	pool := worker.NewPool(cfg.WorkerCount, log)

	return &Ingestor{
		cfg:      cfg,
		log:      log,
		store:    store,
		jobs:     jobs,
		accounts: resolver,
		fanout:   fanout,
		registry: registry,
		tasks:    tasks.NewRegistry(log),
		pool:     pool,
	}, nil
}

// ScheduleCollection queues a post-collection task for an account.
func (in *Ingestor) ScheduleCollection(platform, accountID string, count int, since time.Time) (string, error) {
	collector, err := in.registry.Get(platform)
	if err != nil {
		return "", err
	}

	params := map[string]any{"platform": platform, "account_id": accountID, "count": count}
	id := in.tasks.Create("collect_posts", params, instrumented(func(ctx context.Context) (any, error) {
		ids, err := collector.CollectPosts(ctx, accountID, count, since)
		if err != nil {
			return nil, err
		}
		metrics.IncRecordsIngested(collector.Platform(), publishers.KindPost, len(ids))
		return map[string]any{
			"platform":   collector.Platform(),
			"account_id": accountID,
			"count":      len(ids),
			"ids":        ids,
		}, nil
	}), tasks.PriorityHigh)

	if err := in.tasks.ExecuteAsync(id, in.pool); err != nil {
		return id, err
	}
	return id, nil
}

// ScheduleCommentCollection queues a comment-collection task for a stored
// post.
func (in *Ingestor) ScheduleCommentCollection(platform, postID string, count int) (string, error) {
	collector, err := in.registry.Get(platform)
	if err != nil {
		return "", err
	}

	params := map[string]any{"platform": platform, "post_id": postID, "count": count}
	id := in.tasks.Create("collect_comments", params, instrumented(func(ctx context.Context) (any, error) {
		ids, err := collector.CollectComments(ctx, postID, count)
		if err != nil {
			return nil, err
		}
		metrics.IncRecordsIngested(collector.Platform(), publishers.KindComment, len(ids))
		return map[string]any{
			"platform": collector.Platform(),
			"post_id":  postID,
			"count":    len(ids),
			"ids":      ids,
		}, nil
	}), tasks.PriorityMedium)

	if err := in.tasks.ExecuteAsync(id, in.pool); err != nil {
		return id, err
	}
	return id, nil
}

// ScheduleMetricsRefresh queues an engagement refresh for an account's
// recent posts.
func (in *Ingestor) ScheduleMetricsRefresh(platform, accountID string) (string, error) {
	collector, err := in.registry.Get(platform)
	if err != nil {
		return "", err
	}

	params := map[string]any{"platform": platform, "account_id": accountID}
	id := in.tasks.Create("refresh_metrics", params, instrumented(func(ctx context.Context) (any, error) {
		profile, err := collector.UpdateMetrics(ctx, accountID)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"platform":   collector.Platform(),
			"account_id": accountID,
			"handle":     profile.Handle,
			"followers":  profile.FollowerCount,
		}, nil
	}), tasks.PriorityLow)

	if err := in.tasks.ExecuteAsync(id, in.pool); err != nil {
		return id, err
	}
	return id, nil
}

// CollectNow runs a post collection synchronously and returns its result.
// Used by the one-shot binary.
func (in *Ingestor) CollectNow(ctx context.Context, platform, accountID string, count int, since time.Time) (tasks.Result, error) {
	collector, err := in.registry.Get(platform)
	if err != nil {
		return tasks.Result{}, err
	}

	params := map[string]any{"platform": platform, "account_id": accountID, "count": count}
	id := in.tasks.Create("collect_posts", params, instrumented(func(ctx context.Context) (any, error) {
		ids, err := collector.CollectPosts(ctx, accountID, count, since)
		if err != nil {
			return nil, err
		}
		metrics.IncRecordsIngested(collector.Platform(), publishers.KindPost, len(ids))
		return map[string]any{
			"platform":   collector.Platform(),
			"account_id": accountID,
			"count":      len(ids),
			"ids":        ids,
		}, nil
	}), tasks.PriorityCritical)

	return in.tasks.ExecuteSync(ctx, id)
}

// TaskStatus returns a task snapshot.
func (in *Ingestor) TaskStatus(taskID string) (tasks.Task, error) {
	return in.tasks.Status(taskID)
}

// Tasks lists task snapshots newest first.
func (in *Ingestor) Tasks(statusFilter *tasks.Status, limit, offset int) []tasks.Task {
	return in.tasks.List(statusFilter, limit, offset)
}

// SweepTasks drops terminal tasks older than maxAge.
func (in *Ingestor) SweepTasks(maxAge time.Duration) int {
	return in.tasks.Sweep(maxAge)
}

// Run starts the workers and the periodic collection loop until the context
// is cancelled.
func (in *Ingestor) Run(ctx context.Context) error {
	if in == nil || in.registry == nil {
		return fmt.Errorf("ingestor is not initialized")
	}
	defer in.Close()

	in.pool.Start(ctx)
	defer in.pool.Stop()

	accountList := accounts.Accounts()
	if len(accountList) == 0 {
		in.log.WarnObj("no accounts configured; ingestor idle", "accounts_file", in.cfg.AccountsFile)
		<-ctx.Done()
		return ctx.Err()
	}

	in.log.InfoObj("ingestor loop starting", "ingestor_state", map[string]any{
		"accounts_count":   len(accountList),
		"publishers_count": in.fanout.Size(),
		"collect_interval": in.cfg.CollectInterval.String(),
	})

	in.scheduleAll(accountList)

	collect := time.NewTicker(in.cfg.CollectInterval)
	defer collect.Stop()
	sweep := time.NewTicker(in.cfg.SweepInterval)
	defer sweep.Stop()

	for {
		select {
		case <-ctx.Done():
			in.log.InfoObj("ingestor loop exiting", "reason", ctx.Err())
			return nil
		case <-collect.C:
			in.scheduleAll(accounts.Accounts())
		case <-sweep.C:
			if removed := in.tasks.Sweep(in.cfg.TaskMaxAge); removed > 0 {
				in.log.InfoObj("task sweep completed", "tasks_removed", removed)
			}
		}
	}
}

// scheduleAll queues a post collection for every configured account.
func (in *Ingestor) scheduleAll(accountList []accounts.Account) {
	start := time.Now()
	scheduled := 0
	for _, acct := range accountList {
		if _, err := in.ScheduleCollection(acct.Platform, acct.ID, 0, time.Time{}); err != nil {
			in.log.ErrorObj("collection scheduling failed", "schedule_error", map[string]any{
				"account_id": acct.ID,
				"platform":   acct.Platform,
				"error":      err.Error(),
			})
			continue
		}
		scheduled++
	}
	in.log.InfoObj("collection cycle scheduled", "cycle_meta", map[string]any{
		"accounts_count": len(accountList),
		"scheduled":      scheduled,
		"elapsed_ms":     time.Since(start).Milliseconds(),
	})
}

// Close releases the storage backend and publisher connections.
func (in *Ingestor) Close() {
	if in == nil {
		return
	}
	if in.store != nil {
		if err := in.store.Close(); err != nil {
			in.log.ErrorObj("storage close failed", "error", err)
		}
	}
	if in.fanout != nil {
		if err := in.fanout.Close(); err != nil {
			in.log.ErrorObj("publishers close failed", "error", err)
		}
	}
}

// instrumented counts finished tasks by outcome.
func instrumented(fn tasks.Fn) tasks.Fn {
	return func(ctx context.Context) (any, error) {
		data, err := fn(ctx)
		if err != nil {
			metrics.IncTasksFinished(string(tasks.StatusFailed))
		} else {
			metrics.IncTasksFinished(string(tasks.StatusCompleted))
		}
		return data, err
	}
}
