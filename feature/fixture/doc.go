// Package fixture is the fixture feature: the sync orchestration service,
// read queries, and the admin HTTP surface. The reconciliation itself lives in
// the sync subpackage; the persisted shapes in models.
package fixture
