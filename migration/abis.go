package migration

// Minimal ABI fragments for the external staking contracts the migrators
// interact with.

// gaugeFactoryABI resolves the gauge staking an LP token.
const gaugeFactoryABI = `[
  {"inputs":[{"name":"lpToken","type":"address"}],"name":"getGauge","outputs":[{"name":"","type":"address"}],"stateMutability":"view","type":"function"}
]`

// gaugeABI reads and unwinds a per-asset gauge stake.
const gaugeABI = `[
  {"inputs":[{"name":"account","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
  {"inputs":[{"name":"amount","type":"uint256"}],"name":"withdraw","outputs":[],"stateMutability":"nonpayable","type":"function"}
]`

// chefABI reads and unwinds a numbered-pool chef stake.
const chefABI = `[
  {"inputs":[{"name":"pid","type":"uint256"},{"name":"account","type":"address"}],"name":"userInfo","outputs":[{"name":"amount","type":"uint256"},{"name":"rewardDebt","type":"uint256"}],"stateMutability":"view","type":"function"},
  {"inputs":[{"name":"pid","type":"uint256"},{"name":"amount","type":"uint256"}],"name":"withdraw","outputs":[],"stateMutability":"nonpayable","type":"function"}
]`

// vaultABI deposits the unstaked balance into this vault.
const vaultABI = `[
  {"inputs":[{"name":"amount","type":"uint256"}],"name":"deposit","outputs":[],"stateMutability":"nonpayable","type":"function"}
]`
