package unit_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"mipsunit/internal/asm"
	"mipsunit/internal/cpu"
	"mipsunit/internal/regnames"
	"mipsunit/internal/token"
	"mipsunit/internal/unit"
)

// Hand-built token streams stand in for a lexer, which is an explicit
// external collaborator this module doesn't implement (see internal/token).

func directive(name string) token.Token { return token.Token{Kind: token.Directive, Text: name} }
func sym(name string) token.Token       { return token.Token{Kind: token.Symbol, Text: name} }
func reg(r uint8) token.Token           { return token.Token{Kind: token.Register, Reg: r} }
func intLit(v int64) token.Token        { return token.Token{Kind: token.IntegerLiteral, Int: v} }
func colon() token.Token                { return token.Token{Kind: token.Colon} }
func newline() token.Token              { return token.Token{Kind: token.NewLine} }
func leftBrace() token.Token            { return token.Token{Kind: token.LeftBrace} }
func rightBrace() token.Token           { return token.Token{Kind: token.RightBrace} }

func buildDevice(t *testing.T, tokens []token.Token) *unit.Device {
	t.Helper()
	bin, err := asm.Assemble(tokens)
	require.NoError(t, err)

	d, err := unit.New(bin, unit.Config{})
	require.NoError(t, err)
	return d
}

func TestScenarioAddTwoRegisters(t *testing.T) {
	tokens := []token.Token{
		directive("text"), newline(),
		sym("main"), colon(),
		sym("li"), reg(8), intLit(3), newline(),
		sym("li"), reg(9), intLit(4), newline(),
		sym("add"), reg(10), reg(8), reg(9), newline(),
	}
	d := buildDevice(t, tokens)

	_, err := d.RunUntil(context.Background(), unit.UntilComplete())
	require.NoError(t, err)
	require.Equal(t, uint32(7), d.Get(regnames.T2))
}

func TestScenarioMemoryRoundTrip(t *testing.T) {
	tokens := []token.Token{
		directive("data"), newline(),
		sym("x"), colon(), directive("word"), intLit(0xDEADBEEF), newline(),
		directive("text"), newline(),
		sym("main"), colon(),
		sym("la"), reg(8), sym("x"), newline(),
		sym("lw"), reg(9), intLit(0), leftBrace(), reg(8), rightBrace(), newline(),
	}
	d := buildDevice(t, tokens)

	_, err := d.RunUntil(context.Background(), unit.UntilComplete())
	require.NoError(t, err)
	require.Equal(t, uint32(0xDEADBEEF), d.Get(regnames.T1))
}

func TestScenarioBranchToLabel(t *testing.T) {
	tokens := []token.Token{
		directive("text"), newline(),
		sym("main"), colon(),
		sym("li"), reg(2), intLit(0), newline(),
		sym("beq"), reg(0), reg(0), sym("skip"), newline(),
		sym("li"), reg(2), intLit(1), newline(),
		sym("skip"), colon(),
		sym("li"), reg(2), intLit(2), newline(),
	}
	d := buildDevice(t, tokens)

	_, err := d.RunUntil(context.Background(), unit.UntilComplete())
	require.NoError(t, err)
	require.Equal(t, uint32(2), d.Get(regnames.V0))
}

func TestScenarioBackstepReversesStore(t *testing.T) {
	tokens := []token.Token{
		directive("data"), newline(),
		directive("word"), intLit(0), newline(),
		directive("text"), newline(),
		sym("main"), colon(),
		sym("li"), reg(8), intLit(0x10010000), newline(),
		sym("li"), reg(9), intLit(42), newline(),
		sym("sw"), reg(9), intLit(0), leftBrace(), reg(8), rightBrace(), newline(),
	}
	d := buildDevice(t, tokens)

	_, err := d.RunUntil(context.Background(), unit.UntilComplete())
	require.NoError(t, err)

	data, err := d.GetData(0x10010000, 4)
	require.NoError(t, err)
	require.Equal(t, []byte{0, 0, 0, 42}, data)

	require.NoError(t, d.Executor.Backstep())

	data, err = d.GetData(0x10010000, 4)
	require.NoError(t, err)
	require.Equal(t, []byte{0, 0, 0, 0}, data)
}

func TestScenarioSyscallHandlerObservesArgument(t *testing.T) {
	tokens := []token.Token{
		directive("text"), newline(),
		sym("main"), colon(),
		sym("li"), reg(2), intLit(1), newline(),
		sym("li"), reg(4), intLit(99), newline(),
		sym("syscall"), newline(),
	}
	d := buildDevice(t, tokens)

	var observedCount int
	var observedA0 uint32
	d.HandleSyscall(1, func(dev *unit.Device, s *cpu.State) (bool, error) {
		observedCount++
		observedA0 = s.Regs.Get(regnames.A0)
		return false, nil
	})

	_, err := d.RunUntil(context.Background(), unit.UntilComplete())
	require.NoError(t, err)
	require.Equal(t, 1, observedCount)
	require.Equal(t, uint32(99), observedA0)
}

func TestScenarioTimeoutThenBackstepStillWorks(t *testing.T) {
	tokens := []token.Token{
		directive("text"), newline(),
		sym("main"), colon(),
		sym("b"), sym("main"), newline(),
	}
	d := buildDevice(t, tokens)

	_, err := d.RunUntil(context.Background(), unit.WithTimeout(50*time.Millisecond))
	require.Error(t, err)
	require.IsType(t, unit.ErrExecutionTimedOut{}, err)

	require.NoError(t, d.Executor.Backstep())
}
