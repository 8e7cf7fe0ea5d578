package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	p := NoopPipelineHooks{}
	p.OnBuildStart(ctx, "2020", "all", "all")
	p.OnBuildComplete(ctx, 12, 40, time.Millisecond)
	p.OnBinComplete(ctx, "2020", 177, 9, time.Millisecond)
	p.OnRenderStart(ctx, "sankey", []string{"html"})
	p.OnRenderComplete(ctx, "sankey", []string{"html"}, time.Second, nil)

	tl := NoopTimelapseHooks{}
	tl.OnTick(ctx, "2014", 0)
	tl.OnStateChange(ctx, true)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "graph")
	c.OnCacheMiss(ctx, "artifact")
	c.OnCacheSet(ctx, "artifact", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "example.org", "/refugees.csv")
	h.OnResponse(ctx, "GET", "example.org", "/refugees.csv", 200, time.Second)
	h.OnError(ctx, "GET", "example.org", "/refugees.csv", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := Timelapse().(NoopTimelapseHooks); !ok {
		t.Error("Timelapse() should return NoopTimelapseHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customPipeline := &testPipelineHooks{}
	SetPipelineHooks(customPipeline)
	if Pipeline() != customPipeline {
		t.Error("SetPipelineHooks should set custom hooks")
	}

	customTimelapse := &testTimelapseHooks{}
	SetTimelapseHooks(customTimelapse)
	if Timelapse() != customTimelapse {
		t.Error("SetTimelapseHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset() should restore NoopPipelineHooks")
	}
	if _, ok := Timelapse().(NoopTimelapseHooks); !ok {
		t.Error("Reset() should restore NoopTimelapseHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testPipelineHooks{}
	SetPipelineHooks(custom)
	SetPipelineHooks(nil)
	if Pipeline() != custom {
		t.Error("SetPipelineHooks(nil) should be ignored")
	}
}

type testPipelineHooks struct{ NoopPipelineHooks }
type testTimelapseHooks struct{ NoopTimelapseHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
