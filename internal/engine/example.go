package engine

// ExampleDocument — образец workflow документа: параметры верхнего уровня,
// ссылки на них, параллельный блок с двумя шагами одного типа
// и шаги до и после блока.
const ExampleDocument = `{
  "$schema": "basic schema",
  "name": "Firmware rollout",
  "description": "Sample workflow.",
  "contentVersion": "1.0.0",
  "metadata": {"revision": "v3"},
  "parameters": {
    "vcPackage": "123",
    "bmcVersion": "456",
    "bmcFile": "789"
  },
  "workflow": [
    {
      "type": "Prepare",
      "name": "Initialize experiment environment",
      "description": "Reserve nodes and reset state",
      "group": "Group A",
      "parameters": {"param1": "1345", "param2": "1423"}
    },
    {
      "type": "ParallelExecution",
      "name": "Update firmware",
      "steps": [
        {"type": "Firmware update", "name": "Update BMC", "parameters": {"version": "$.parameters.bmcVersion", "file": "$.parameters.bmcFile"}},
        {"type": "Firmware update", "name": "Update VC", "parameters": {"package": "$.parameters.vcPackage"}},
        {"type": "Health check", "name": "Check nodes", "parameters": {"timeout": "300"}}
      ]
    },
    {
      "type": "Report",
      "name": "Collect results",
      "group": "Group B",
      "parameters": {"bmc": "$.parameters.bmcVersion"}
    }
  ]
}
`
