package runnerpool

import "github.com/google/uuid"

/**
test double for PoolClient. Set the Fail* fields to make individual calls
error; otherwise the canned values are returned and calls are recorded.
*/
type PoolClientMock struct {
	Capacity         int
	CapacityErr      error
	CapacityCalls    int
	DispatchedInputs []map[string]string
	DispatchErr      error
	RunIdForJob      int64
	FindRunErr       error
	FindRunCalls     []uuid.UUID
	LogArchive       []byte
	FetchLogsErr     error
	FetchLogsCalls   []int64
}

func (m *PoolClientMock) IdleCapacity() (int, error) {
	m.CapacityCalls += 1
	if m.CapacityErr != nil {
		return 0, m.CapacityErr
	}
	return m.Capacity, nil
}

func (m *PoolClientMock) DispatchWorkflow(inputs map[string]string) error {
	if m.DispatchErr != nil {
		return m.DispatchErr
	}
	m.DispatchedInputs = append(m.DispatchedInputs, inputs)
	return nil
}

func (m *PoolClientMock) FindRunForJob(jobId uuid.UUID) (int64, error) {
	m.FindRunCalls = append(m.FindRunCalls, jobId)
	if m.FindRunErr != nil {
		return 0, m.FindRunErr
	}
	return m.RunIdForJob, nil
}

func (m *PoolClientMock) FetchRunLogs(runId int64) ([]byte, error) {
	m.FetchLogsCalls = append(m.FetchLogsCalls, runId)
	if m.FetchLogsErr != nil {
		return nil, m.FetchLogsErr
	}
	return m.LogArchive, nil
}
