package commands_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/wipt/cmd/wipt/commands"
	"go.trai.ch/wipt/internal/adapters/manifest"
	"go.trai.ch/wipt/internal/build"
	"go.trai.ch/wipt/internal/core/domain"
	"go.trai.ch/wipt/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

type call struct {
	name       string
	args       []string
	opts       domain.InstallOptions
	dir        string
	info       manifest.PackageInfo
	makeStable bool
}

type mockApp struct {
	calls []call
	err   error
}

func (m *mockApp) record(c call) error {
	m.calls = append(m.calls, c)
	return m.err
}

func (m *mockApp) Update(_ context.Context) error {
	return m.record(call{name: "update"})
}

func (m *mockApp) Install(_ context.Context, names []string, opts domain.InstallOptions) error {
	return m.record(call{name: "install", args: names, opts: opts})
}

func (m *mockApp) Remove(_ context.Context, names []string) error {
	return m.record(call{name: "remove", args: names})
}

func (m *mockApp) Upgrade(_ context.Context, names []string, opts domain.InstallOptions) error {
	return m.record(call{name: "upgrade", args: names, opts: opts})
}

func (m *mockApp) Download(_ context.Context, names []string, dir string) error {
	return m.record(call{name: "download", args: names, dir: dir})
}

func (m *mockApp) Show(w io.Writer, names []string) error {
	_, _ = io.WriteString(w, "listing\n")
	return m.record(call{name: "show", args: names})
}

func (m *mockApp) RepoCreate(path, maintainer, supportURL string) error {
	return m.record(call{name: "repo create", args: []string{path, maintainer, supportURL}})
}

func (m *mockApp) RepoAddPackage(path string, info manifest.PackageInfo, makeStable bool) error {
	return m.record(call{name: "repo add-package", args: []string{path}, info: info, makeStable: makeStable})
}

func newCLI(t *testing.T, a *mockApp, args ...string) (*commands.CLI, *bytes.Buffer) {
	t.Helper()
	log := mocks.NewMockLogger(gomock.NewController(t))
	cli := commands.New(a, log)
	buf := new(bytes.Buffer)
	cli.SetOutput(buf, buf)
	cli.SetArgs(args)
	return cli, buf
}

func TestCommands_Install(t *testing.T) {
	t.Run("wires flags correctly", func(t *testing.T) {
		a := &mockApp{}
		cli, _ := newCLI(t, a, "install", "Foo", "Bar=1.2",
			"--ignore-transforms", "--ignore-patches", "--per-user", "--target-dir", "/opt/foo")

		require.NoError(t, cli.Execute(context.Background()))
		require.Len(t, a.calls, 1)
		assert.Equal(t, "install", a.calls[0].name)
		assert.Equal(t, []string{"Foo", "Bar=1.2"}, a.calls[0].args)
		assert.Equal(t, domain.InstallOptions{
			IgnoreTransforms: true,
			IgnorePatches:    true,
			PerUser:          true,
			TargetDir:        "/opt/foo",
		}, a.calls[0].opts)
	})

	t.Run("returns error on install failure", func(t *testing.T) {
		a := &mockApp{err: errors.New("simulated error")}
		cli, _ := newCLI(t, a, "install", "Foo")

		err := cli.Execute(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "simulated error")
	})

}

func TestCommands_Upgrade_WithoutNames(t *testing.T) {
	a := &mockApp{}
	cli, _ := newCLI(t, a, "upgrade")

	require.NoError(t, cli.Execute(context.Background()))
	require.Len(t, a.calls, 1)
	assert.Equal(t, "upgrade", a.calls[0].name)
	assert.Empty(t, a.calls[0].args)
}

func TestCommands_RequireProducts(t *testing.T) {
	for _, command := range []string{"install", "remove"} {
		t.Run(command, func(t *testing.T) {
			a := &mockApp{}
			cli, _ := newCLI(t, a, command)

			err := cli.Execute(context.Background())
			require.ErrorIs(t, err, domain.ErrNoProducts)
			assert.Empty(t, a.calls)
		})
	}
}

func TestCommands_Dispatch(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected call
	}{
		{
			name:     "update",
			args:     []string{"update"},
			expected: call{name: "update"},
		},
		{
			name:     "remove",
			args:     []string{"remove", "Foo=1.0"},
			expected: call{name: "remove", args: []string{"Foo=1.0"}},
		},
		{
			name:     "upgrade",
			args:     []string{"upgrade", "-u", "Foo"},
			expected: call{name: "upgrade", args: []string{"Foo"}, opts: domain.InstallOptions{PerUser: true}},
		},
		{
			name:     "upgrade several products",
			args:     []string{"upgrade", "Foo", "Bar"},
			expected: call{name: "upgrade", args: []string{"Foo", "Bar"}},
		},
		{
			name:     "download",
			args:     []string{"download", "Foo", "--dir", "/tmp/pkgs"},
			expected: call{name: "download", args: []string{"Foo"}, dir: "/tmp/pkgs"},
		},
		{
			name:     "show",
			args:     []string{"show", "Foo", "Bar"},
			expected: call{name: "show", args: []string{"Foo", "Bar"}},
		},
		{
			name:     "repo create",
			args:     []string{"repo", "create", "repo.xml", "Acme IT"},
			expected: call{name: "repo create", args: []string{"repo.xml", "Acme IT", ""}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &mockApp{}
			cli, _ := newCLI(t, a, tt.args...)

			require.NoError(t, cli.Execute(context.Background()))
			require.Len(t, a.calls, 1)
			assert.Equal(t, tt.expected, a.calls[0])
		})
	}
}

func TestCommands_Show_WritesToStdout(t *testing.T) {
	a := &mockApp{}
	cli, buf := newCLI(t, a, "show", "Foo")

	require.NoError(t, cli.Execute(context.Background()))
	assert.Equal(t, "listing\n", buf.String())
}

func TestCommands_RepoAddPackage(t *testing.T) {
	t.Run("parses package metadata", func(t *testing.T) {
		a := &mockApp{}
		cli, _ := newCLI(t, a, "repo", "add-package", "repo.xml",
			"--name", "Foo",
			"--upgrade-code", "{00000000-0000-0000-0000-0000000000A1}",
			"--product-code", "00000000-0000-0000-0000-0000000000c1",
			"--package-version", "1.2",
			"--url", "http://example.com/Foo-1.2.msi",
			"--make-stable")

		require.NoError(t, cli.Execute(context.Background()))
		require.Len(t, a.calls, 1)
		got := a.calls[0]
		assert.True(t, got.makeStable)
		assert.Equal(t, []string{"repo.xml"}, got.args)
		assert.Equal(t, "Foo", got.info.ProductName)
		assert.Equal(t, domain.MustParseCode("{00000000-0000-0000-0000-0000000000A1}"), got.info.UpgradeCode)
		assert.Equal(t, domain.MustParseCode("{00000000-0000-0000-0000-0000000000C1}"), got.info.ProductCode)
		assert.Equal(t, "1.2", got.info.Version)
	})

	t.Run("rejects malformed codes", func(t *testing.T) {
		a := &mockApp{}
		cli, _ := newCLI(t, a, "repo", "add-package", "repo.xml",
			"--name", "Foo",
			"--upgrade-code", "not-a-guid",
			"--product-code", "{00000000-0000-0000-0000-0000000000C1}",
			"--package-version", "1.2",
			"--url", "http://example.com/Foo-1.2.msi")

		err := cli.Execute(context.Background())
		assert.ErrorIs(t, err, domain.ErrInvalidCode)
		assert.Empty(t, a.calls)
	})

	t.Run("requires metadata flags", func(t *testing.T) {
		a := &mockApp{}
		cli, _ := newCLI(t, a, "repo", "add-package", "repo.xml")

		require.Error(t, cli.Execute(context.Background()))
		assert.Empty(t, a.calls)
	})
}

func TestCommands_Version(t *testing.T) {
	cli, buf := newCLI(t, &mockApp{}, "version")

	require.NoError(t, cli.Execute(context.Background()))
	assert.Contains(t, buf.String(), build.Version)
}
