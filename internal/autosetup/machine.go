package autosetup

import (
	"errors"
	"fmt"
)

// State 自动建档流程状态
type State string

// 状态只会沿 idle → checking → registering → done 推进，
// checking 阶段发现已有档案时直接跳到 done。
const (
	StateIdle        State = "idle"
	StateChecking    State = "checking"
	StateRegistering State = "registering"
	StateDone        State = "done"
)

// Event 驱动状态机的事件
type Event string

const (
	// EventAuthReady 外部认证完成，拿到稳定用户标识
	EventAuthReady Event = "auth_ready"
	// EventRegistrationResult 注册尝试出结果（成功或失败）
	EventRegistrationResult Event = "registration_result"
)

// ErrMachineDone 状态机已终止，拒绝继续接收事件
var ErrMachineDone = errors.New("自动建档流程已结束")

// Machine 自动建档状态机；终止后不再接受任何事件
type Machine struct {
	state State
}

// NewMachine 创建处于 idle 的状态机
func NewMachine() *Machine {
	return &Machine{state: StateIdle}
}

// State 返回当前状态
func (m *Machine) State() State {
	return m.state
}

// Done 判断流程是否已终止
func (m *Machine) Done() bool {
	return m.state == StateDone
}

// Apply 接收事件并推进状态
func (m *Machine) Apply(event Event) error {
	if m.Done() {
		return ErrMachineDone
	}
	switch {
	case event == EventAuthReady && m.state == StateIdle:
		m.state = StateChecking
		return nil
	case event == EventRegistrationResult && m.state == StateRegistering:
		m.state = StateDone
		return nil
	default:
		return fmt.Errorf("状态 %s 不接受事件 %s", m.state, event)
	}
}

// BeginRegistration 档案缺失时从 checking 进入 registering
func (m *Machine) BeginRegistration() error {
	if m.Done() {
		return ErrMachineDone
	}
	if m.state != StateChecking {
		return fmt.Errorf("状态 %s 不能开始注册", m.state)
	}
	m.state = StateRegistering
	return nil
}

// FinishChecked 档案已存在时从 checking 直接终止
func (m *Machine) FinishChecked() error {
	if m.Done() {
		return ErrMachineDone
	}
	if m.state != StateChecking {
		return fmt.Errorf("状态 %s 不能直接结束", m.state)
	}
	m.state = StateDone
	return nil
}
