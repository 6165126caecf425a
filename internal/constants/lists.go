package constants

import "factory-erp/internal/storage"

const (
	RoleWorker     = "worker"
	RoleSupervisor = "supervisor"
)

var (
	// наряды, по которым сканы и паузы запрещены
	ClosedWorkOrderStatuses = map[string]bool{
		storage.WorkOrderCompleted: true,
		storage.WorkOrderCancelled: true,
	}

	// роли, чья ставка идёт в себестоимость поверх бригады
	SupervisorRoles = map[string]bool{
		RoleSupervisor: true,
	}
)
