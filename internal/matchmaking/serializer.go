package matchmaking

import (
	"sync"

	"github.com/jwy0805/CryWolfApiServer-sub000/pkg/logger"
)

// Job 직렬 실행 단위 (인자 없는 작업)
type Job func()

// Serializer 매칭 상태 변경을 단일 워커에서 순서대로 실행하는 잡 큐.
// 모든 큐 상태 변경은 Serializer 잡 안에서만 일어나므로 매칭 로직에는 락이 필요 없다.
type Serializer struct {
	mu   sync.Mutex
	jobs []Job

	// signal은 버퍼 1짜리 채널. drain 중에 새 잡이 들어와도 신호가 유실되지 않는다.
	signal   chan struct{}
	stopChan chan struct{}
	wg       sync.WaitGroup

	stateMu sync.Mutex
	running bool
}

// NewSerializer Serializer 생성
func NewSerializer() *Serializer {
	return &Serializer{
		signal:   make(chan struct{}, 1),
		stopChan: make(chan struct{}),
	}
}

// Start 워커 시작
func (s *Serializer) Start() {
	s.stateMu.Lock()
	if s.running {
		s.stateMu.Unlock()
		return
	}
	s.running = true
	s.stateMu.Unlock()

	s.wg.Add(1)
	go s.workerLoop()
}

// Stop 워커 중지. 진행 중인 drain이 끝난 뒤 종료된다.
func (s *Serializer) Stop() {
	s.stateMu.Lock()
	if !s.running {
		s.stateMu.Unlock()
		return
	}
	s.running = false
	s.stateMu.Unlock()

	close(s.stopChan)
	s.wg.Wait()
}

// Push 잡을 큐에 추가. 어떤 고루틴에서 호출해도 안전하며 블로킹하지 않는다.
func (s *Serializer) Push(job Job) {
	s.mu.Lock()
	s.jobs = append(s.jobs, job)
	s.mu.Unlock()

	select {
	case s.signal <- struct{}{}:
	default:
	}
}

// workerLoop 신호를 기다렸다가 쌓인 잡을 순서대로 실행
func (s *Serializer) workerLoop() {
	defer s.wg.Done()

	for {
		select {
		case <-s.signal:
			s.drain()
		case <-s.stopChan:
			// 종료 전 남은 잡 처리
			s.drain()
			return
		}
	}
}

// drain 큐가 빌 때까지 잡을 실행. drain 중 추가된 잡도 같은 호출에서 처리된다.
func (s *Serializer) drain() {
	for {
		s.mu.Lock()
		jobs := s.jobs
		s.jobs = nil
		s.mu.Unlock()

		if len(jobs) == 0 {
			return
		}

		for _, job := range jobs {
			s.runJob(job)
		}
	}
}

// runJob 잡 하나 실행. 패닉은 워커를 살리기 위해 잡 단위로 복구하고 로그만 남긴다.
func (s *Serializer) runJob(job Job) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Matchmaking job panicked", "panic", r)
		}
	}()

	job()
}
