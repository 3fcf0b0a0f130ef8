package task

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"easy_promos/internal/model"
)

// StoreSyncer 店铺同步能力，由 service.StoreService 实现
type StoreSyncer interface {
	ListSyncableShops(ctx context.Context) ([]string, error)
	SyncStore(ctx context.Context, shopDomain string) (*model.Store, error)
}

// StoreSyncResult 单轮执行结果
type StoreSyncResult struct {
	Total     int
	Succeeded int
	Failed    int
}

// StoreSyncTask 定时刷新所有已安装店铺的资料
type StoreSyncTask struct {
	syncer StoreSyncer
	Cron   *cron.Cron
	log    *zap.Logger

	// 控制并发，避免触发 Shopify 限流
	concurrencyLimit int
	timeout          time.Duration
}

// NewStoreSyncTask 创建店铺同步任务
func NewStoreSyncTask(syncer StoreSyncer, log *zap.Logger) *StoreSyncTask {
	if log == nil {
		log = zap.L()
	}
	return &StoreSyncTask{
		syncer:           syncer,
		Cron:             cron.New(cron.WithSeconds()), // 支持秒级控制
		log:              log.Named("store_sync"),
		concurrencyLimit: 5,
		timeout:          5 * time.Minute,
	}
}

// Start 注册并启动定时任务
func (t *StoreSyncTask) Start(spec string) error {
	_, err := t.Cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
		defer cancel()
		t.RunOnce(ctx)
	})
	if err != nil {
		return fmt.Errorf("无法注册店铺同步任务 %q: %w", spec, err)
	}

	t.Cron.Start()
	t.log.Info("店铺同步任务已启动", zap.String("spec", spec))
	return nil
}

// Stop 停止调度并等待运行中的任务结束
func (t *StoreSyncTask) Stop(ctx context.Context) {
	done := t.Cron.Stop().Done()
	select {
	case <-done:
	case <-ctx.Done():
		t.log.Warn("等待店铺同步任务结束超时")
	}
}

// RunOnce 同步一轮，单个店铺失败只记录日志
func (t *StoreSyncTask) RunOnce(ctx context.Context) StoreSyncResult {
	shops, err := t.syncer.ListSyncableShops(ctx)
	if err != nil {
		t.log.Error("查询待同步店铺失败", zap.Error(err))
		return StoreSyncResult{}
	}

	sem := make(chan struct{}, t.concurrencyLimit)
	var wg sync.WaitGroup
	var succeeded, failed int64

	t.log.Info("开始同步店铺", zap.Int("count", len(shops)), zap.Int("concurrency", t.concurrencyLimit))

	for _, shop := range shops {
		// 超时或取消后不再派发新店铺
		if ctx.Err() != nil {
			t.log.Warn("任务超时停止", zap.Error(ctx.Err()))
			break
		}

		sem <- struct{}{}
		wg.Add(1)

		go func(shop string) {
			defer wg.Done()
			defer func() { <-sem }()

			if _, err := t.syncer.SyncStore(ctx, shop); err != nil {
				atomic.AddInt64(&failed, 1)
				t.log.Warn("店铺同步失败", zap.String("shop", shop), zap.Error(err))
				return
			}
			atomic.AddInt64(&succeeded, 1)
		}(shop)
	}

	wg.Wait()
	result := StoreSyncResult{Total: len(shops), Succeeded: int(succeeded), Failed: int(failed)}
	t.log.Info("本轮店铺同步完成",
		zap.Int("succeeded", result.Succeeded),
		zap.Int("failed", result.Failed),
	)
	return result
}
