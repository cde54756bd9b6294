// Package unit loads configuration units from declarative sources.
//
// A configuration unit is a named bundle of properties plus the identity of
// the provider it configures. Units are declared in one of three formats:
//
// Persistence documents (persistence.xml):
//
//	<persistence>
//	  <persistence-unit name="orders" transaction-type="RESOURCE_LOCAL">
//	    <provider>sqlite3</provider>
//	    <properties>
//	      <property name="dsn" value="file::memory:"/>
//	    </properties>
//	  </persistence-unit>
//	</persistence>
//
// YAML (*.units.yaml, *.units.yml):
//
//	units:
//	  - name: orders
//	    transactionType: RESOURCE_LOCAL
//	    provider: sqlite3
//	    properties:
//	      - name: dsn
//	        value: "file::memory:"
//
// CUE (*.units.cue):
//
//	units: [{
//		name:            "orders"
//		transactionType: "RESOURCE_LOCAL"
//		provider:        "sqlite3"
//		properties: [{name: "dsn", value: "file::memory:"}]
//	}]
//
// # Property precedence
//
// Each descriptor's property map is folded in this order, later layers
// overwriting earlier ones on key collision:
//
//  1. base properties configured on the Loader
//  2. the unit's own properties block (duplicate keys: last occurrence wins)
//  3. caller-supplied overrides
//
// The transaction type is carried on the descriptor but never interpreted by
// the merge. A unit without a name attribute yields a descriptor whose name
// is reported as absent.
package unit
