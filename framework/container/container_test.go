package container_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-laravel-container/framework/container"
)

// ── fixtures ──────────────────────────────────────────────────────────────────

type Cache interface{ Get(key string) string }

type memoryCache struct{ prefix string }

func (m *memoryCache) Get(key string) string { return m.prefix + key }

type Filesystem interface{ Disk() string }

type localFS struct{}

func (*localFS) Disk() string { return "local" }

type s3FS struct{}

func (*s3FS) Disk() string { return "s3" }

type photoController struct{ fs Filesystem }

type videoController struct{ fs Filesystem }

type Dependent struct{ cache Cache }

type report struct{ id int }

type smtpMailer struct {
	host string
	port int
}

type mapConfig map[string]any

func (m mapConfig) Get(key string, def any) any {
	if v, ok := m[key]; ok {
		return v
	}
	return def
}

var (
	cacheType      = container.TypeOf[Cache]()
	memoryType     = container.TypeOf[*memoryCache]()
	filesystemType = container.TypeOf[Filesystem]()
)

// ── Bind / Singleton ──────────────────────────────────────────────────────────

func TestSingleton_ReturnsSameInstance(t *testing.T) {
	c := container.New()
	require.NoError(t, c.Singleton(cacheType, memoryType))

	a, err := c.Make(cacheType)
	require.NoError(t, err)
	b, err := c.Make(cacheType)
	require.NoError(t, err)

	assert.IsType(t, &memoryCache{}, a)
	assert.Same(t, a, b)
	assert.True(t, c.IsShared(cacheType))
	assert.True(t, c.Resolved(cacheType))
}

func TestBind_ReturnsNewInstanceEachTime(t *testing.T) {
	c := container.New()
	require.NoError(t, c.Bind(cacheType, memoryType))

	a, err := c.Make(cacheType)
	require.NoError(t, err)
	b, err := c.Make(cacheType)
	require.NoError(t, err)

	assert.NotSame(t, a, b)
	assert.False(t, c.IsShared(cacheType))
}

func TestBind_FactoryShapes(t *testing.T) {
	c := container.New()
	require.NoError(t, c.Bind("a", func(*container.Container) any { return "A" }))
	require.NoError(t, c.Bind("b", func(*container.Container) (any, error) { return "B", nil }))
	require.NoError(t, c.Bind("c", func(_ *container.Container, p container.Params) (any, error) {
		return p["suffix"], nil
	}))

	for id, want := range map[string]string{"a": "A", "b": "B"} {
		v, err := c.Make(id)
		require.NoError(t, err)
		assert.Equal(t, want, v)
	}
	v, err := c.MakeWith("c", container.Params{"suffix": "C"})
	require.NoError(t, err)
	assert.Equal(t, "C", v)
}

func TestBind_RejectsInvalidConcrete(t *testing.T) {
	c := container.New()

	var bindErr *container.BindingError
	require.ErrorAs(t, c.Bind("x", []string{"not", "comparable"}), &bindErr)
	require.ErrorAs(t, c.Bind("x", nil), &bindErr)
	require.ErrorAs(t, c.Bind(func() {}, "x"), &bindErr)
	assert.False(t, c.Bound("x"))
}

func TestBindIf_KeepsExistingBinding(t *testing.T) {
	c := container.New()
	require.NoError(t, c.Set("greeting", "hello"))
	require.NoError(t, c.BindIf("greeting", func(*container.Container) any { return "bye" }))
	require.NoError(t, c.SingletonIf("greeting", func(*container.Container) any { return "bye" }))

	v, err := c.Make("greeting")
	require.NoError(t, err)
	assert.Equal(t, "hello", v)
}

func TestBind_DropsStaleInstance(t *testing.T) {
	c := container.New()
	require.NoError(t, c.Instance("driver", "file"))
	require.NoError(t, c.Bind("driver", func(*container.Container) any { return "redis" }))

	v, err := c.Make("driver")
	require.NoError(t, err)
	assert.Equal(t, "redis", v)
}

func TestUnbind(t *testing.T) {
	c := container.New()
	require.NoError(t, c.Singleton("svc", func(*container.Container) any { return 1 }))
	_, err := c.Make("svc")
	require.NoError(t, err)

	c.Unbind("svc")
	assert.False(t, c.Bound("svc"))
	assert.False(t, c.Resolved("svc"))
	assert.False(t, c.HasSharedInstance("svc"))
}

func TestScoped_ForgottenBetweenScopes(t *testing.T) {
	c := container.New()
	calls := 0
	require.NoError(t, c.Scoped("request", func(*container.Container) any {
		calls++
		return &report{id: calls}
	}))

	a, err := c.Make("request")
	require.NoError(t, err)
	b, err := c.Make("request")
	require.NoError(t, err)
	assert.Same(t, a, b)

	c.ForgetScopedInstances()
	d, err := c.Make("request")
	require.NoError(t, err)
	assert.NotSame(t, a, d)
	assert.Equal(t, 2, calls)
}

func TestContainer_ResolvesItself(t *testing.T) {
	c := container.New()

	self, err := c.Make("container")
	require.NoError(t, err)
	assert.Same(t, c, self)

	typed, err := container.ResolveType[*container.Container](c)
	require.NoError(t, err)
	assert.Same(t, c, typed)

	c.Flush()
	self, err = c.Make("container")
	require.NoError(t, err)
	assert.Same(t, c, self)
}

func TestBindings_SortedNames(t *testing.T) {
	c := container.New()
	require.NoError(t, c.Set("zeta", 1))
	require.NoError(t, c.Set("alpha", 2))

	assert.Equal(t, []string{"*container.Container", "alpha", "zeta"}, c.Bindings())
}

// ── Instances and aliases ─────────────────────────────────────────────────────

func TestAlias_FollowsChain(t *testing.T) {
	c := container.New()
	cfg := mapConfig{"app.name": "demo"}
	require.NoError(t, c.Instance("config", cfg))
	require.NoError(t, c.Alias("config", "cfg"))
	require.NoError(t, c.Alias("cfg", "settings"))

	v, err := c.Make("settings")
	require.NoError(t, err)
	assert.Equal(t, cfg, v)

	canonical, err := c.GetAlias("settings")
	require.NoError(t, err)
	assert.Equal(t, "config", canonical)
	assert.True(t, c.IsAlias("cfg"))
	assert.True(t, c.Bound("settings"))
}

func TestAlias_ToItself(t *testing.T) {
	c := container.New()

	err := c.Alias("cache", "cache")
	var selfAlias *container.SelfAliasError
	require.ErrorAs(t, err, &selfAlias)
	assert.EqualError(t, err, "container: [cache] is aliased to itself")
}

func TestAlias_Loop(t *testing.T) {
	c := container.New()
	require.NoError(t, c.Alias("a", "b"))
	require.NoError(t, c.Alias("b", "a"))

	_, err := c.Make("a")
	var cyclic *container.CyclicDependencyError
	require.ErrorAs(t, err, &cyclic)
	assert.Equal(t, []string{"a", "b", "a"}, cyclic.Path)
}

func TestInstance_ForgetInstances(t *testing.T) {
	c := container.New()
	require.NoError(t, c.Instance("a", 1))
	require.NoError(t, c.Instance("b", 2))

	c.ForgetInstance("a")
	assert.False(t, c.HasSharedInstance("a"))
	assert.True(t, c.HasSharedInstance("b"))

	c.ForgetInstances()
	assert.False(t, c.HasSharedInstance("b"))
	assert.True(t, c.Bound("container"))
}

// ── Construction ──────────────────────────────────────────────────────────────

func TestMake_NotInstantiableWhileBuilding(t *testing.T) {
	c := container.New()
	require.NoError(t, c.Define(func(cache Cache) *Dependent { return &Dependent{cache: cache} }))

	_, err := c.Make(container.TypeOf[*Dependent]())
	var notInstantiable *container.NotInstantiableError
	require.ErrorAs(t, err, &notInstantiable)
	assert.EqualError(t, err,
		"container: target [container_test.Cache] is not instantiable while building [*container_test.Dependent]")

	// The build stack is unwound, so a later attempt starts clean.
	require.NoError(t, c.Bind(cacheType, memoryType))
	d, err := container.ResolveType[*Dependent](c)
	require.NoError(t, err)
	assert.IsType(t, &memoryCache{}, d.cache)
}

func TestMake_UnboundInterface(t *testing.T) {
	c := container.New()

	_, err := c.Make(cacheType)
	assert.EqualError(t, err, "container: target [container_test.Cache] is not instantiable")
}

func TestMake_BareStruct(t *testing.T) {
	c := container.New()

	v, err := container.ResolveType[*memoryCache](c)
	require.NoError(t, err)
	assert.NotNil(t, v)

	plain, err := c.Make(container.TypeOf[report]())
	require.NoError(t, err)
	assert.Equal(t, report{}, plain)
}

func TestMake_PrimitiveDefaultsAndOverrides(t *testing.T) {
	c := container.New()
	require.NoError(t, c.Define(
		func(host string, port int) *smtpMailer { return &smtpMailer{host: host, port: port} },
		container.Arg("host").Default("localhost"),
		container.Arg("port").Default(25),
	))

	m, err := container.ResolveType[*smtpMailer](c)
	require.NoError(t, err)
	assert.Equal(t, &smtpMailer{host: "localhost", port: 25}, m)

	v, err := c.MakeWith(container.TypeOf[*smtpMailer](), container.Params{"port": 2525})
	require.NoError(t, err)
	assert.Equal(t, &smtpMailer{host: "localhost", port: 2525}, v)
}

func TestMake_OverrideConsumedOnce(t *testing.T) {
	c := container.New()
	require.NoError(t, c.Define(
		func(host, fallback string) *smtpMailer { return &smtpMailer{host: host + "|" + fallback} },
		container.Arg("host"),
		container.Arg("host").Default("default"),
	))

	v, err := c.MakeWith(container.TypeOf[*smtpMailer](), container.Params{"host": "given"})
	require.NoError(t, err)
	assert.Equal(t, "given|default", v.(*smtpMailer).host)
}

func TestMake_UnresolvablePrimitive(t *testing.T) {
	c := container.New()
	require.NoError(t, c.Define(
		func(host string) *smtpMailer { return &smtpMailer{host: host} },
		container.Arg("host"),
	))

	_, err := c.Make(container.TypeOf[*smtpMailer]())
	var unresolvable *container.UnresolvableDependencyError
	require.ErrorAs(t, err, &unresolvable)
	assert.Equal(t, "#0 $host", unresolvable.Parameter)
	assert.Equal(t, "*container_test.smtpMailer", unresolvable.Class)
}

func TestMake_ParamsBypassSharedCache(t *testing.T) {
	c := container.New()
	require.NoError(t, c.Define(
		func(id int) *report { return &report{id: id} },
		container.Arg("id").Default(0),
	))
	reportType := container.TypeOf[*report]()
	require.NoError(t, c.Singleton(reportType, nil))

	first, err := c.Make(reportType)
	require.NoError(t, err)

	custom, err := c.MakeWith(reportType, container.Params{"id": 42})
	require.NoError(t, err)
	assert.Equal(t, 42, custom.(*report).id)

	again, err := c.Make(reportType)
	require.NoError(t, err)
	assert.Same(t, first, again)
}

func TestMake_ConstructorError(t *testing.T) {
	c := container.New()
	boom := errors.New("boom")
	require.NoError(t, c.Define(func() (*report, error) { return nil, boom }))

	_, err := c.Make(container.TypeOf[*report]())
	assert.ErrorIs(t, err, boom)
}

func TestDefine_RejectsBadDescriptors(t *testing.T) {
	c := container.New()
	var descErr *container.DescriptorError

	require.ErrorAs(t, c.Define("not a func"), &descErr)
	require.ErrorAs(t, c.Define(func() error { return nil }), &descErr)
	require.ErrorAs(t, c.Define(func(a, b int) *report { return nil }, container.Arg("a")), &descErr)
	require.ErrorAs(t, c.Define(func(port int) *report { return nil }, container.Arg("port").Default("25")), &descErr)
}

// ── Cycles ────────────────────────────────────────────────────────────────────

type nodeA struct{ b *nodeB }

type nodeB struct{ a *nodeA }

func TestMake_CyclicConstructors(t *testing.T) {
	c := container.New()
	require.NoError(t, c.Define(func(b *nodeB) *nodeA { return &nodeA{b: b} }))
	require.NoError(t, c.Define(func(a *nodeA) *nodeB { return &nodeB{a: a} }))

	_, err := c.Make(container.TypeOf[*nodeA]())
	var cyclic *container.CyclicDependencyError
	require.ErrorAs(t, err, &cyclic)
	assert.Equal(t, []string{"*container_test.nodeA", "*container_test.nodeB", "*container_test.nodeA"}, cyclic.Path)
}

func TestMake_CyclicFactoriesHitDepthLimit(t *testing.T) {
	c := container.New(container.WithMaxDepth(16))
	require.NoError(t, c.Bind("x", func(c *container.Container) (any, error) { return c.Make("y") }))
	require.NoError(t, c.Bind("y", func(c *container.Container) (any, error) { return c.Make("x") }))

	_, err := c.Get("x")
	var cyclic *container.CyclicDependencyError
	require.ErrorAs(t, err, &cyclic)

	// Stacks are unwound after the failure.
	require.NoError(t, c.Set("z", "ok"))
	v, err := c.Make("z")
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
}

// ── Get ───────────────────────────────────────────────────────────────────────

func TestGet_EntryNotFound(t *testing.T) {
	c := container.New()

	_, err := c.Get("missing")
	var notFound *container.EntryNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "missing", notFound.ID)

	var notInstantiable *container.NotInstantiableError
	assert.ErrorAs(t, err, &notInstantiable)
}

func TestGet_BoundEntryErrorIsReturnedAsIs(t *testing.T) {
	c := container.New()
	boom := errors.New("boom")
	require.NoError(t, c.Bind("svc", func(*container.Container) (any, error) { return nil, boom }))

	_, err := c.Get("svc")
	assert.Same(t, boom, err)
}

func TestResolve_TypeMismatch(t *testing.T) {
	c := container.New()
	require.NoError(t, c.Instance("port", 8080))

	_, err := container.Resolve[string](c, "port")
	var mismatch *container.TypeMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "int", mismatch.Actual)
	assert.Panics(t, func() { container.MustResolve[string](c, "port") })
}

// ── Contextual binding ────────────────────────────────────────────────────────

func TestContextual_OverridesGlobalBinding(t *testing.T) {
	c := container.New()
	require.NoError(t, c.Define(func(fs Filesystem) *photoController { return &photoController{fs: fs} }))
	require.NoError(t, c.Define(func(fs Filesystem) *videoController { return &videoController{fs: fs} }))
	require.NoError(t, c.Bind(filesystemType, container.TypeOf[*localFS]()))
	require.NoError(t, c.When(container.TypeOf[*photoController]()).
		Needs(filesystemType).
		Give(container.TypeOf[*s3FS]()))

	photo, err := container.ResolveType[*photoController](c)
	require.NoError(t, err)
	assert.Equal(t, "s3", photo.fs.Disk())

	video, err := container.ResolveType[*videoController](c)
	require.NoError(t, err)
	assert.Equal(t, "local", video.fs.Disk())
}

func TestContextual_MatchesAliasOfNeeded(t *testing.T) {
	c := container.New()
	require.NoError(t, c.Define(func(fs Filesystem) *photoController { return &photoController{fs: fs} }))
	require.NoError(t, c.Alias(filesystemType, "filesystem"))
	require.NoError(t, c.When(container.TypeOf[*photoController]()).
		Needs("filesystem").
		Give(func(*container.Container) any { return &s3FS{} }))

	photo, err := container.ResolveType[*photoController](c)
	require.NoError(t, err)
	assert.Equal(t, "s3", photo.fs.Disk())
}

func TestContextual_Primitives(t *testing.T) {
	c := container.New()
	mailerType := container.TypeOf[*smtpMailer]()
	require.NoError(t, c.Define(
		func(host string, port int) *smtpMailer { return &smtpMailer{host: host, port: port} },
		container.Arg("host"),
		container.Arg("port").Default(25),
	))
	require.NoError(t, c.Instance("config", mapConfig{"mail.port": 465}))
	require.NoError(t, c.When(mailerType).Needs("$host").Give("smtp.example.com"))
	require.NoError(t, c.When(mailerType).Needs("$port").GiveConfig("mail.port", 25))

	m, err := container.ResolveType[*smtpMailer](c)
	require.NoError(t, err)
	assert.Equal(t, &smtpMailer{host: "smtp.example.com", port: 465}, m)
}

func TestContextual_GiveWithoutNeeds(t *testing.T) {
	c := container.New()

	var bindErr *container.BindingError
	require.ErrorAs(t, c.When("a").GiveValue(1), &bindErr)
}

// ── Variadics and tags ────────────────────────────────────────────────────────

type Report interface{ Name() string }

type cpuReport struct{}

func (*cpuReport) Name() string { return "cpu" }

type memoryReport struct{}

func (*memoryReport) Name() string { return "memory" }

type dashboard struct{ reports []Report }

func (d *dashboard) names() []string {
	out := make([]string, 0, len(d.reports))
	for _, r := range d.reports {
		out = append(out, r.Name())
	}
	return out
}

func newDashboardContainer(t *testing.T) *container.Container {
	t.Helper()
	c := container.New()
	require.NoError(t, c.Define(func(reports ...Report) *dashboard { return &dashboard{reports: reports} }))
	c.Tag([]any{container.TypeOf[*cpuReport](), container.TypeOf[*memoryReport]()}, "reports")
	return c
}

func TestVariadic_GiveTagged(t *testing.T) {
	c := newDashboardContainer(t)
	require.NoError(t, c.When(container.TypeOf[*dashboard]()).
		Needs(container.TypeOf[Report]()).
		GiveTagged("reports"))

	d, err := container.ResolveType[*dashboard](c)
	require.NoError(t, err)
	assert.Equal(t, []string{"cpu", "memory"}, d.names())
}

func TestVariadic_GiveList(t *testing.T) {
	c := newDashboardContainer(t)
	require.NoError(t, c.When(container.TypeOf[*dashboard]()).
		Needs(container.TypeOf[Report]()).
		Give([]any{container.TypeOf[*memoryReport]()}))

	d, err := container.ResolveType[*dashboard](c)
	require.NoError(t, err)
	assert.Equal(t, []string{"memory"}, d.names())
}

func TestVariadic_UnboundIsEmpty(t *testing.T) {
	c := newDashboardContainer(t)

	d, err := container.ResolveType[*dashboard](c)
	require.NoError(t, err)
	assert.Empty(t, d.reports)
}

func TestTagged_LazySinglePass(t *testing.T) {
	c := container.New()
	calls := 0
	for _, id := range []string{"a", "b"} {
		require.NoError(t, c.Bind(id, func(*container.Container) any {
			calls++
			return id
		}))
	}
	c.Tag([]any{"a", "b"}, "letters")

	set := c.Tagged("letters")
	assert.Equal(t, 2, set.Len())
	assert.Equal(t, 0, calls)

	first, ok, err := set.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "a", first)
	assert.Equal(t, 1, calls)

	rest, err := set.Collect()
	require.NoError(t, err)
	assert.Equal(t, []any{"b"}, rest)

	exhausted, err := set.Collect()
	require.NoError(t, err)
	assert.Empty(t, exhausted)

	fresh, err := c.Tagged("letters").Collect()
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b"}, fresh)
	assert.Equal(t, 4, calls)
}

func TestTagged_StopsAtFirstError(t *testing.T) {
	c := container.New()
	require.NoError(t, c.Set("ok", 1))
	c.Tag([]any{"missing", "ok"}, "mixed")

	var seen []any
	var failures int
	for v, err := range c.Tagged("mixed").All() {
		if err != nil {
			failures++
			continue
		}
		seen = append(seen, v)
	}
	assert.Equal(t, 1, failures)
	assert.Empty(t, seen)
}

func TestTagged_UnknownTag(t *testing.T) {
	c := container.New()

	all, err := c.Tagged("nothing").Collect()
	require.NoError(t, err)
	assert.Empty(t, all)
}

// ── Extend ────────────────────────────────────────────────────────────────────

func TestExtend_AppliesInOrder(t *testing.T) {
	c := container.New()
	require.NoError(t, c.Singleton("greeting", func(*container.Container) any { return "x" }))
	require.NoError(t, c.Extend("greeting", func(v any, _ *container.Container) any { return v.(string) + "1" }))
	require.NoError(t, c.Extend("greeting", func(v any, _ *container.Container) any { return v.(string) + "2" }))

	v, err := c.Make("greeting")
	require.NoError(t, err)
	assert.Equal(t, "x12", v)

	// A cached instance is decorated in place.
	require.NoError(t, c.Extend("greeting", func(v any, _ *container.Container) any { return v.(string) + "3" }))
	v, err = c.Make("greeting")
	require.NoError(t, err)
	assert.Equal(t, "x123", v)
}

func TestExtend_ThroughAlias(t *testing.T) {
	c := container.New()
	require.NoError(t, c.Bind("logger", func(*container.Container) any { return "log" }))
	require.NoError(t, c.Alias("logger", "log"))
	require.NoError(t, c.Extend("log", func(v any, _ *container.Container) any { return "[" + v.(string) + "]" }))

	v, err := c.Make("logger")
	require.NoError(t, err)
	assert.Equal(t, "[log]", v)

	c.ForgetExtenders("log")
	v, err = c.Make("logger")
	require.NoError(t, err)
	assert.Equal(t, "log", v)
}

// ── Callbacks ─────────────────────────────────────────────────────────────────

func TestResolving_FiresOnceThroughAlias(t *testing.T) {
	c := container.New()
	require.NoError(t, c.Bind(cacheType, memoryType))
	require.NoError(t, c.Alias(cacheType, "cache"))

	var global, typed, after int
	c.Resolving(func(any, *container.Container) { global++ })
	c.ResolvingFor("cache", func(any, *container.Container) { typed++ })
	c.AfterResolvingFor(cacheType, func(any, *container.Container) { after++ })

	_, err := c.Make("cache")
	require.NoError(t, err)

	assert.Equal(t, 1, global)
	assert.Equal(t, 1, typed)
	assert.Equal(t, 1, after)
}

func TestResolving_MatchesImplementedInterface(t *testing.T) {
	c := container.New()
	var seen []any
	c.ResolvingFor(cacheType, func(v any, _ *container.Container) { seen = append(seen, v) })

	v, err := c.Make(memoryType)
	require.NoError(t, err)
	assert.Equal(t, []any{v}, seen)
}

func TestResolving_OrderOfCallbacks(t *testing.T) {
	c := container.New()
	require.NoError(t, c.Set("svc", 1))

	var order []string
	c.AfterResolving(func(any, *container.Container) { order = append(order, "after") })
	c.ResolvingFor("svc", func(any, *container.Container) { order = append(order, "typed") })
	c.Resolving(func(any, *container.Container) { order = append(order, "global") })
	c.BeforeResolving(func(abstract any, _ container.Params, _ *container.Container) {
		order = append(order, "before:"+container.Name(abstract))
	})

	_, err := c.Make("svc")
	require.NoError(t, err)
	assert.Equal(t, []string{"before:svc", "global", "typed", "after"}, order)
}

func TestBeforeResolvingFor_ReceivesParams(t *testing.T) {
	c := container.New()
	require.NoError(t, c.Set("svc", 1))

	var got container.Params
	c.BeforeResolvingFor("svc", func(_ any, p container.Params, _ *container.Container) { got = p })

	_, err := c.MakeWith("svc", container.Params{"x": 1})
	require.NoError(t, err)
	assert.Equal(t, container.Params{"x": 1}, got)
}

func TestRebinding_FiresWithNewInstance(t *testing.T) {
	c := container.New()
	require.NoError(t, c.Bind("mailer", func(*container.Container) any { return "smtp" }))

	var rebound []any
	current, err := c.Rebinding("mailer", func(_ *container.Container, v any) { rebound = append(rebound, v) })
	require.NoError(t, err)
	assert.Equal(t, "smtp", current)

	require.NoError(t, c.Bind("mailer", func(*container.Container) any { return "ses" }))
	assert.Equal(t, []any{"ses"}, rebound)

	require.NoError(t, c.Instance("mailer", "log"))
	assert.Equal(t, []any{"ses", "log"}, rebound)
}

type mailerHolder struct{ mailer string }

func (h *mailerHolder) SetMailer(m string) { h.mailer = m }

func TestRefresh_CallsTargetMethod(t *testing.T) {
	c := container.New()
	require.NoError(t, c.Bind("mailer", func(*container.Container) any { return "smtp" }))

	holder := &mailerHolder{}
	_, err := c.Refresh("mailer", holder, "SetMailer")
	require.NoError(t, err)

	require.NoError(t, c.Bind("mailer", func(*container.Container) any { return "ses" }))
	assert.Equal(t, "ses", holder.mailer)

	_, err = c.Refresh("mailer", holder, "Missing")
	var missing *container.MissingMethodError
	assert.ErrorAs(t, err, &missing)
}

func TestFactory_ResolvesLazily(t *testing.T) {
	c := container.New()
	calls := 0
	require.NoError(t, c.Bind("svc", func(*container.Container) any {
		calls++
		return calls
	}))

	lazy := c.Factory("svc")
	assert.Equal(t, 0, calls)

	v, err := lazy()
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestToken_Identity(t *testing.T) {
	c := container.New()
	a := container.NewToken("db")
	b := container.NewToken("db")
	require.NoError(t, c.Instance(a, "primary"))

	assert.True(t, c.Bound(a))
	assert.False(t, c.Bound(b))
	assert.Equal(t, "db", container.Name(a))
}

func TestScopedIf_KeepsExistingBinding(t *testing.T) {
	c := container.New()
	require.NoError(t, c.Instance("request", "first"))
	require.NoError(t, c.ScopedIf("request", func(*container.Container) any { return "second" }))

	v, err := c.Make("request")
	require.NoError(t, err)
	assert.Equal(t, "first", v)

	require.NoError(t, c.ScopedIf("session", func(*container.Container) any { return "fresh" }))
	c.ForgetScopedInstances()
	v, err = c.Make("session")
	require.NoError(t, err)
	assert.Equal(t, "fresh", v)
	assert.True(t, c.HasSharedInstance("session"))
}

type innerService struct{ host string }

type outerService struct{ inner *innerService }

func TestMake_ClassDefaultOnlyForNotInstantiable(t *testing.T) {
	c := container.New()
	require.NoError(t, c.Define(
		func(in *innerService) *outerService { return &outerService{inner: in} },
		container.Arg("in").Default(&innerService{host: "fallback"}),
	))
	require.NoError(t, c.Define(func(host string) *innerService { return &innerService{host: host} }, container.Arg("host")))

	_, err := container.ResolveType[*outerService](c)
	var unresolvable *container.UnresolvableDependencyError
	require.ErrorAs(t, err, &unresolvable)
	assert.Equal(t, "*container_test.innerService", unresolvable.Class)

	c = container.New()
	var fallback Cache = &memoryCache{prefix: "d:"}
	require.NoError(t, c.Define(
		func(cache Cache) *Dependent { return &Dependent{cache: cache} },
		container.Arg("cache").Default(fallback),
	))

	dep, err := container.ResolveType[*Dependent](c)
	require.NoError(t, err)
	assert.Same(t, fallback, dep.cache)
}

func TestExtend_ResolvedTransientFiresRebinding(t *testing.T) {
	c := container.New()
	require.NoError(t, c.Bind("mailer", func(*container.Container) any { return "smtp" }))

	var rebound []any
	current, err := c.Rebinding("mailer", func(_ *container.Container, instance any) {
		rebound = append(rebound, instance)
	})
	require.NoError(t, err)
	assert.Equal(t, "smtp", current)
	assert.Empty(t, rebound)

	require.NoError(t, c.Extend("mailer", func(v any, _ *container.Container) any { return v.(string) + "+queue" }))
	assert.Equal(t, []any{"smtp+queue"}, rebound)
}

func TestContextual_BypassesSharedCache(t *testing.T) {
	c := container.New()
	require.NoError(t, c.Define(func(fs Filesystem) *photoController { return &photoController{fs: fs} }))
	require.NoError(t, c.Singleton(filesystemType, container.TypeOf[*localFS]()))
	require.NoError(t, c.When(container.TypeOf[*photoController]()).
		Needs(filesystemType).
		Give(func(*container.Container) any { return &s3FS{} }))

	global, err := c.Make(filesystemType)
	require.NoError(t, err)

	photo, err := container.ResolveType[*photoController](c)
	require.NoError(t, err)
	assert.Equal(t, "s3", photo.fs.Disk())

	again, err := c.Make(filesystemType)
	require.NoError(t, err)
	assert.Same(t, global, again)
	assert.Equal(t, "local", again.(Filesystem).Disk())
}

func TestContextual_RejectsNilImplementation(t *testing.T) {
	c := container.New()
	require.NoError(t, c.Bind(filesystemType, container.TypeOf[*localFS]()))
	require.NoError(t, c.Define(func(fs Filesystem) *photoController { return &photoController{fs: fs} }))

	err := c.When(container.TypeOf[*photoController]()).Needs(filesystemType).Give(nil)
	var bindErr *container.BindingError
	require.ErrorAs(t, err, &bindErr)

	photo, err := container.ResolveType[*photoController](c)
	require.NoError(t, err)
	assert.Equal(t, "local", photo.fs.Disk())
}
